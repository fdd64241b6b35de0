package generation

// Config controls the token budgets and sampling of generative calls.
type Config struct {
	// RoadmapMaxTokens bounds the roadmap response.
	RoadmapMaxTokens int

	// CertificationMaxTokens bounds the certification response.
	CertificationMaxTokens int

	// Temperature is non-zero to allow variety while staying coherent.
	Temperature float64
}

func DefaultConfig() Config {
	return Config{
		RoadmapMaxTokens:       2000,
		CertificationMaxTokens: 1500,
		Temperature:            0.7,
	}
}
