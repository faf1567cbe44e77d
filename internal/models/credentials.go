package models

// Credentials stores a username and secret for a single service.
type Credentials struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Complete reports whether both parts of the pair are set.
func (c Credentials) Complete() bool {
	return c.Username != "" && c.Password != ""
}

// ServiceCredentials groups the credential pairs used during a run.
type ServiceCredentials struct {
	Chat    Credentials `yaml:"flowdock"`
	Tracker Credentials `yaml:"jira"`
}
