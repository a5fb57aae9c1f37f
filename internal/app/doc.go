// Package app wires the CRPD dashboard together and runs it.
//
// # Initialization Flow
//
//	1. Load configuration from environment and files
//	2. Initialize logging and observability
//	3. Load the registration workbook; a failure here is fatal
//	4. Create the authenticator, session store and health service
//	5. Set up HTTP handlers and middleware
//	6. Start the HTTP server and the session janitor
//
// # Usage
//
//	application, err := app.NewApplication(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Signals
//
// SIGINT and SIGTERM shut the server down gracefully: active requests are
// completed and final metrics are flushed. SIGHUP reloads the workbook
// without restarting; a failed reload keeps the current dataset.
//
// # Error Handling
//
// All initialization errors are returned to the caller. The app does not
// call os.Exit() directly, allowing the main function to control the exit
// process.
package app
