package models

// String methods for all custom string types.
// These are required for toon serialization, which uses fmt.Stringer.

// Status
func (s Status) String() string { return string(s) }

// MetricResult
func (m MetricResult) String() string { return string(m) }

// Severity
func (s Severity) String() string { return string(s) }

// Language
func (l Language) String() string { return string(l) }

// Backend
func (b Backend) String() string { return string(b) }

// NodeTag
func (n NodeTag) String() string { return string(n) }

// BiasLevel
func (b BiasLevel) String() string { return string(b) }
