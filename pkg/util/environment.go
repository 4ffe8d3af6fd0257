package util

import (
	"os"
	"strings"

	"golang.org/x/exp/slices"
)

var truthyValues = []string{"YES", "TRUE", "1"}

func GetEnvironmentVariables() map[string]string {
	environmentVariables := map[string]string{}

	for _, variable := range os.Environ() {
		pair := strings.SplitN(variable, "=", 2)

		environmentVariables[pair[0]] = pair[1]
	}

	return environmentVariables
}

// EnvironmentFlag treats YES, TRUE and 1 (any case) as set.
func EnvironmentFlag(value string) bool {
	return slices.Contains(truthyValues, strings.ToUpper(strings.TrimSpace(value)))
}
