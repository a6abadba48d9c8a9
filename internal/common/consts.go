package common

// UnknownStr is the String() of enum values outside their declared range.
const UnknownStr = "unknown"
