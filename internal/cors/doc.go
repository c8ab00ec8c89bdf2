// Package cors tests whether a development server's CORS policy admits a
// set of literal browser origins.
//
// Each origin gets one OPTIONS preflight. The verdict uses the narrow
// definition: an origin is allowed when Access-Control-Allow-Origin is "*"
// or equals the origin exactly. Allow-Methods and Allow-Headers are
// recorded but never change the verdict.
package cors
