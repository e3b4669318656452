package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"skysms.org/internal/checklist"
	"skysms.org/internal/safety"
)

func newChecklistCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checklist",
		Short: "Print the built-in pre-flight checklist",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, cat := range checklist.Catalog() {
				fmt.Printf("%s %s (%s)\n", cat.Emoji, cat.Title, cat.Description)
				for _, it := range cat.Items {
					fmt.Printf("  [%s] %s\n", it.ID, it.Text)
				}
			}
			return nil
		},
	}
}

func newEvaluateCmd(cfgPath *string) *cobra.Command {
	var (
		pilot    string
		plan     string
		checked  []string
		comments []string
	)
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Submit a risk evaluation from checklist answers",
		Long: `Submit a risk evaluation. Items are referenced by their catalog id,
e.g. --check health_1 --check weather_2 --comment "health_3=slept 5h".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cfgPath, func(a *app) error {
				cl := checklist.New()
				for _, id := range checked {
					if err := cl.SetChecked(categoryOf(id), id, true); err != nil {
						return fmt.Errorf("unknown item %q", id)
					}
				}
				for _, c := range comments {
					id, text, ok := strings.Cut(c, "=")
					if !ok {
						return fmt.Errorf("comment %q must be item_id=text", c)
					}
					if err := cl.SetComment(categoryOf(id), id, text); err != nil {
						return fmt.Errorf("unknown item %q", id)
					}
				}

				eval, err := a.safety.Submit(cmd.Context(), pilot, plan, cl)
				if err != nil {
					if st := a.safety.State(); st.Phase == safety.PhaseError {
						return fmt.Errorf("%s", st.Message)
					}
					return err
				}
				printEvaluation(eval)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&pilot, "pilot", "", "Pilot name (required)")
	cmd.Flags().StringVar(&plan, "plan", "", "Base mitigation plan text")
	cmd.Flags().StringArrayVar(&checked, "check", nil, "Item id to mark checked (repeatable)")
	cmd.Flags().StringArrayVar(&comments, "comment", nil, "item_id=text comment (repeatable)")
	return cmd
}

// categoryOf maps an item id like "health_3" to its category id.
func categoryOf(itemID string) string {
	cat, _, _ := strings.Cut(itemID, "_")
	return cat
}

func newHistoryCmd(cfgPath *string) *cobra.Command {
	var (
		pilot string
		all   bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List evaluation history, cached first then refreshed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cfgPath, func(a *app) error {
				if !all && pilot == "" {
					if u, ok := a.sess.User(); ok {
						pilot = u.Name
					}
				}

				var updates <-chan safety.HistoryUpdate
				if all {
					updates = a.safety.AllEvaluations(cmd.Context())
				} else {
					updates = a.safety.History(cmd.Context(), pilot)
				}

				for u := range updates {
					fmt.Printf("-- %s (%d records)\n", u.Origin, len(u.Evaluations))
					for _, e := range u.Evaluations {
						fmt.Printf("#%d %s  %s  total %d  %s\n",
							e.ID, e.Timestamp, e.PilotName, e.TotalScore, e.RiskLevel.DisplayName())
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&pilot, "pilot", "", "Pilot name (defaults to the signed-in user)")
	cmd.Flags().BoolVar(&all, "all", false, "List every cached record regardless of pilot")
	return cmd
}

func printEvaluation(e safety.Evaluation) {
	fmt.Printf("Avaliação #%d  %s\n", e.ID, e.Timestamp)
	fmt.Printf("Piloto: %s\n", e.PilotName)
	fmt.Printf("Saúde %d  Meteorologia %d  Aeronave %d  Missão %d  Total %d\n",
		e.HealthScore, e.WeatherScore, e.AircraftScore, e.MissionScore, e.TotalScore)
	fmt.Printf("Risco: %s\n", e.RiskLevel.DisplayName())
	if e.MitigationPlan != "" {
		fmt.Printf("Plano de mitigação:\n%s\n", e.MitigationPlan)
	}
}
