// Command scriptqueue is the operator CLI for the job queue.
//
// It works directly against the shared SQLite database, so most commands are
// usable whether or not the daemon is running; lifecycle transitions go
// through the same conditional updates the daemon uses.
package main
