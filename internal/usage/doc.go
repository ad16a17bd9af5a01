// Package usage answers "which application is in front right now" for focus
// mode. A Source reports recently used applications and the Monitor picks the
// most recently used one inside a short window.
package usage
