// Package cli provides the shared plumbing of the openai command-line tool.
//
// This package includes:
//   - Configuration management (named contexts holding credentials)
//   - Output formatting (YAML, JSON, raw)
//   - Request file loading (YAML or JSON, decoded through json tags)
//   - Styled transcript output for interactive sessions
//
// Configuration is stored in ~/.openai-tools/<app>/ directory, supporting
// multiple contexts similar to kubectl.
//
// Example usage:
//
//	cfg, err := cli.LoadConfig("openai")
//	if err != nil {
//	    return err
//	}
//	ctx, err := cfg.Resolve("")
//	if err != nil {
//	    return err
//	}
//	var auth *openai.AuthProvider
//	if ctx != nil {
//	    auth, err = ctx.AuthProvider()
//	} else {
//	    auth, err = openai.FromEnv()
//	}
//	if err != nil {
//	    return err
//	}
//	client := openai.NewClient(auth)
package cli
