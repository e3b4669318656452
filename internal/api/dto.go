package api

// Wire DTOs. The backend contract mixes snake_case (token fields) with
// camelCase (safety evaluation fields); both are preserved as-is for
// compatibility.

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type OAuthLoginRequest struct {
	IDToken  string `json:"idToken"`
	Provider string `json:"provider"`
}

type GoogleSignInRequest struct {
	IDToken   string `json:"id_token"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	PhotoURL string `json:"photoUrl,omitempty"`
}

type AuthResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

type EvaluationRequest struct {
	PilotName      string `json:"pilotName"`
	HealthScore    int    `json:"healthScore"`
	WeatherScore   int    `json:"weatherScore"`
	AircraftScore  int    `json:"aircraftScore"`
	MissionScore   int    `json:"missionScore"`
	MitigationPlan string `json:"mitigationPlan"`
}

type EvaluationResponse struct {
	ID             int64   `json:"id"`
	PilotName      string  `json:"pilotName"`
	HealthScore    int     `json:"healthScore"`
	WeatherScore   int     `json:"weatherScore"`
	AircraftScore  int     `json:"aircraftScore"`
	MissionScore   int     `json:"missionScore"`
	RiskLevel      string  `json:"riskLevel"`
	TotalScore     int     `json:"totalScore"`
	Timestamp      string  `json:"timestamp"`
	MitigationPlan *string `json:"mitigationPlan"`
}
