package domain

// KeyPrefix namespaces every storage key. Overridden at startup from
// Storage.KeyPrefix before any repository is constructed.
var KeyPrefix = "doccat:"
