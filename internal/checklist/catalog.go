package checklist

// Category ids. The four dimensions are fixed by the evaluation contract.
const (
	CategoryHealth   = "health"
	CategoryWeather  = "weather"
	CategoryAircraft = "aircraft"
	CategoryMission  = "mission"
)

// Catalog returns a fresh copy of the built-in checklist: four categories of
// five items each. Titles and item texts are the product's Portuguese strings
// and are embedded verbatim into mitigation plans, so they must not change.
func Catalog() []Category {
	return []Category{
		{
			ID:          CategoryHealth,
			Title:       "SAÚDE",
			Emoji:       "❤️",
			Description: "Fatores Humanos",
			Items: []Item{
				{ID: "health_1", Text: "Repouso adequado (8h)?"},
				{ID: "health_2", Text: "Hidratação/Alimentação?"},
				{ID: "health_3", Text: "Nível de estresse/Fadiga?"},
				{ID: "health_4", Text: "Medicamentos ou Álcool?"},
				{ID: "health_5", Text: "Equipamento (EPI) completo?"},
			},
		},
		{
			ID:          CategoryWeather,
			Title:       "METEOROLOGIA",
			Emoji:       "☁️",
			Description: "Ambiente",
			Items: []Item{
				{ID: "weather_1", Text: "Vento dentro do envelope?"},
				{ID: "weather_2", Text: "Visibilidade/Teto?"},
				{ID: "weather_3", Text: "Temperatura/Umidade?"},
				{ID: "weather_4", Text: "Previsão de mudança?"},
				{ID: "weather_5", Text: "Turbulência esperada?"},
			},
		},
		{
			ID:          CategoryAircraft,
			Title:       "AERONAVE",
			Emoji:       "✈️",
			Description: "Máquina",
			Items: []Item{
				{ID: "aircraft_1", Text: "Combustível suficiente?"},
				{ID: "aircraft_2", Text: "Peso e Balanceamento?"},
				{ID: "aircraft_3", Text: "Sistemas de pulverização?"},
				{ID: "aircraft_4", Text: "Manutenção em dia?"},
				{ID: "aircraft_5", Text: "Performance para pista?"},
			},
		},
		{
			ID:          CategoryMission,
			Title:       "MISSÃO",
			Emoji:       "🎯",
			Description: "Operação",
			Items: []Item{
				{ID: "mission_1", Text: "Obstáculos mapeados?"},
				{ID: "mission_2", Text: "Comunicação solo-ar?"},
				{ID: "mission_3", Text: "Pressão de tempo?"},
				{ID: "mission_4", Text: "Plano de contingência?"},
				{ID: "mission_5", Text: "Áreas sensíveis próximas?"},
			},
		},
	}
}
