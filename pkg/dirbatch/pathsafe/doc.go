// Package pathsafe sanitizes entry names and checks rename targets against
// their base directory before anything is renamed.
package pathsafe
