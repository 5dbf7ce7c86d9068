package resolver

const (
	landingBody  = `<html><body><h1>Personal Redirect Service</h1><p>Provide a valid slug in the URL path.</p></body></html>`
	notFoundBody = `<html><body><h1>404 - Not Found</h1><p>The requested slug was not found.</p></body></html>`
	errorBody    = `<html><body><h1>500 - Internal Server Error</h1><p>An error occurred processing your request.</p></body></html>`
)

// CacheMaxAge is the Cache-Control max-age, in seconds, sent with redirects.
const CacheMaxAge = 300
