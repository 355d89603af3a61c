// Package utils provides small helpers shared across features, such as
// turning loosely typed JSON values from the stash feed into strings.
package utils
