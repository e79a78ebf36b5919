// Package idle shuts the server down after a period without requests.
//
// A Tracker counts in-flight requests and remembers the last activity time;
// a Watcher samples it on a ticker and reports idleness only when nothing is
// in flight, so long downloads and uploads keep the server alive.
package idle
