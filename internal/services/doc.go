// Package services defines the error taxonomy shared by pipeline stages and
// hosts clients for external capabilities.
package services
