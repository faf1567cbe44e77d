package models

// Issue is the subset of a tracker issue needed to announce a deploy.
type Issue struct {
	Key     string
	Summary string
	// DeployTime holds the raw ISO-8601 value of the deploy time field, empty when unset.
	DeployTime string
}
