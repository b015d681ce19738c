package domain

import "strings"

type Environment string

const (
	EnvironmentDevelopment Environment = "development"
	EnvironmentProduction  Environment = "production"
	EnvironmentTest        Environment = "test"
)

func ParseEnvironment(s string) Environment {
	switch Environment(strings.ToLower(strings.TrimSpace(s))) {
	case EnvironmentProduction:
		return EnvironmentProduction
	case EnvironmentTest:
		return EnvironmentTest
	default:
		return EnvironmentDevelopment
	}
}

func (e Environment) String() string {
	return string(e)
}
