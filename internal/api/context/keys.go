package context

type Key string

const (
	Claims       Key = "claims"
	Organization Key = "organization"
	Params       Key = "params"
)
