package common

// AccessTokenHeaderName is the HTTP header used to carry the bearer access
// token on outbound requests.
const AccessTokenHeaderName = "Authorization"

// DefaultTreePath is the single path every vault contains after
// initialization.
const DefaultTreePath = "default"
