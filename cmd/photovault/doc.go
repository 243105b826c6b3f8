// Command photovault backs up a cloud photo library to local storage.
//
// The CLI wraps the backup orchestrator, the takeout importer, and the
// run history store behind cobra commands. Configuration is loaded once
// per invocation (--config flag, then $PHOTOVAULT_CONFIG, then the
// default locations) and shared by every command.
package main
