// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the evaluation lifecycle (load the model,
// decode the scenario, run the driver, write and publish the results),
// decoupled from any specific entrypoint like a CLI.
package app
