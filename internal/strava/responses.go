package strava

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"`
}

type activityResponse struct {
	Name        string  `json:"name"`
	StartDate   string  `json:"start_date"`
	Distance    float64 `json:"distance"`    // meters
	MovingTime  int     `json:"moving_time"` // seconds
	ElapsedTime int     `json:"elapsed_time"`
	SportType   string  `json:"sport_type"`
	Type        string  `json:"type"`
}
