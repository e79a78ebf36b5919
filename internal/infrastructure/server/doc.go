// Package server assembles the file server: configuration, file system
// service, auth, middleware and routes, plus the listener lifecycle.
//
// Start binds the port (ErrPortInUse when taken) and, when idle shutdown is
// enabled, runs an idle.Watcher next to the listener. When the watcher fires
// the listener is shut down and Done is closed. Stop cancels the watcher and
// waits for it before shutting down; Restart is Stop followed by Start and
// resets the inactivity timer.
package server
