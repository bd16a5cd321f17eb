// Package prompts centralizes the prompt text sent to the completion
// service. Each template is a package-level constant with an exported
// interpolation function, so prompt wording can be reviewed and changed
// in one place without touching orchestration logic.
package prompts
