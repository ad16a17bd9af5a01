// Package preferences reads the host application's persisted key/value
// preferences. The bridge never owns this state: it reads the countdown
// snapshot at start to restore a pending alarm.
//
// Two stores are provided: FileStore for a shared_preferences style JSON file
// and SQLiteStore for hosts that keep preferences in an SQLite database.
package preferences
