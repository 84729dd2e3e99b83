package ecmodel

import "fmt"

// Envelope is the closed-taxonomy terminal error value every step returns
// in place of a value on failure. It is a sum-type in spirit: any step
// returning a non-nil *Envelope means the pipeline aborts there.
type Envelope struct {
	Error   string         `json:"error"`
	Reason  string         `json:"reason"`
	Details map[string]any `json:"details"`
}

// ErrorClasses is the closed set of legal Envelope.Error values.
var ErrorClasses = map[string]bool{
	"Validation": true,
	"Step1":      true,
	"Step2":      true,
	"Step3":      true,
	"Step4":      true,
}

// NewEnvelope builds an Envelope, panicking if class is outside the closed
// taxonomy or reason is empty — both are programming errors, never data
// errors, so they must not be allowed to silently mint an invalid envelope.
func NewEnvelope(class, reason string, details map[string]any) *Envelope {
	if !ErrorClasses[class] {
		panic(fmt.Sprintf("ecmodel: invalid envelope class %q", class))
	}
	if reason == "" {
		panic("ecmodel: envelope reason must not be empty")
	}
	if details == nil {
		details = map[string]any{}
	}
	return &Envelope{Error: class, Reason: reason, Details: details}
}

// IsEnvelope reports whether v is structurally a valid envelope: exactly
// the three keys {error, reason, details}, error in the closed set, and a
// non-empty reason. Used at JSON boundaries per spec §7's "structural
// check: exactly the three keys" propagation policy.
func IsEnvelope(v map[string]any) bool {
	if len(v) != 3 {
		return false
	}
	errVal, ok := v["error"].(string)
	if !ok || !ErrorClasses[errVal] {
		return false
	}
	reason, ok := v["reason"].(string)
	if !ok || reason == "" {
		return false
	}
	if _, ok := v["details"]; !ok {
		return false
	}
	return true
}
