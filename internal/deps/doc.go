// Package deps checks the availability of the external tools the pipeline
// shells out to.
package deps
