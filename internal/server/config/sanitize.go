package config

// Sanitize returns a copy of cfg that is safe to log. The metrics bearer
// token is the only secret the configuration carries.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	out := *cfg
	if out.Metrics.Token != "" {
		out.Metrics.Token = maskSecret(out.Metrics.Token)
	}
	return &out
}

// maskSecret hides a secret and its length. Secrets long enough to stay
// unguessable keep their last four characters for identification.
func maskSecret(s string) string {
	const keep = 4
	if len(s) < 4*keep {
		return "********"
	}
	return "********" + s[len(s)-keep:]
}
