package domain

// Currency codes used by the platform.
const CurrencyMXN = "MXN"
