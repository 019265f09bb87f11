// Package reveal opens the platform file manager at a file's location.
package reveal
