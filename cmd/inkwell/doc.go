// Command inkwell is the operator CLI for an inkwell installation.
//
// It can run the server in the foreground, scaffold and validate the
// configuration file, report daemon and database status, inspect settings,
// send manual update pings, and read daemon logs. Commands that only need the
// configuration annotate themselves so a broken config does not block
// `inkwell config init`.
package main
