package casbin

import "fmt"

type UnknownPolicyTypeError struct {
	PolicyType string
}

func (err UnknownPolicyTypeError) Error() string {
	return "unknown policy type: " + err.PolicyType
}

type MalformedPolicyError struct {
	Line   int
	Record []string
}

func (err MalformedPolicyError) Error() string {
	return fmt.Sprintf("malformed policy on line %d: %v", err.Line, err.Record)
}
