// Package vault manages a session against the document vault: connection and
// authentication state plus the per-file lock and workflow-state operations,
// keyed by location.
//
// The vault server is the source of truth for every lock and state; the
// operations here are requests it may reject. Vendor-documented hazard, not
// enforced here: a file's lock or workflow state must not be changed while
// the same file is open in an application session. The two sessions share no
// runtime state, so the caller owns that precondition.
package vault

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/cadforge/solidwrap/pkg/com"
	"github.com/cadforge/solidwrap/pkg/location"
)

// vaultProgID is the fixed dispatch identifier for the vault automation
// surface.
const vaultProgID = "ConisioLib.EdmVault"

// automationTag is appended to every checkin and state-change comment so
// vault history distinguishes automated from manual actions.
const automationTag = "automated action using SolidWrap"

// ConnectionError reports a dispatch or login failure against the vault.
type ConnectionError struct {
	Vault string
	Err   error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connecting to vault %q: %v", e.Vault, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// AlreadyInStateError reports a lock operation requested when the file is
// already in the target lock state. It is expected steady-state noise in
// batch workflows: non-fatal, the operation was a no-op.
type AlreadyInStateError struct {
	Location location.Location
	State    string
}

func (e *AlreadyInStateError) Error() string {
	return fmt.Sprintf("%s is already %s", e.Location.Name(), e.State)
}

// InvalidTransitionError reports a workflow transition request whose name
// matches none of the transitions available from the file's current state.
type InvalidTransitionError struct {
	Location   location.Location
	Transition string
	Available  []string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("transition %q is not available for %s (available: %v)",
		e.Transition, e.Location.Name(), e.Available)
}

// Config holds configuration for a vault session.
type Config struct {
	// Vault is the vault name logged into, e.g. "My_Vault". Required.
	Vault string

	// Dispatcher creates the automation connection. Defaults to the platform
	// dispatcher.
	Dispatcher com.Dispatcher

	// Logger for session operations.
	Logger hclog.Logger
}

// Client is a session against the vault process. Callers own the Client's
// lifetime and pass it explicitly to whatever needs it.
type Client struct {
	vault      com.Object
	name       string
	dispatcher com.Dispatcher
	log        hclog.Logger
}

// New creates a vault session. No connection is made until Connect.
func New(cfg Config) (*Client, error) {
	if cfg.Vault == "" {
		return nil, fmt.Errorf("vault name is required")
	}
	if cfg.Dispatcher == nil {
		cfg.Dispatcher = com.NewDispatcher()
	}
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}

	return &Client{
		name:       cfg.Vault,
		dispatcher: cfg.Dispatcher,
		log:        cfg.Logger.Named("vault"),
	}, nil
}

// Name returns the vault name.
func (c *Client) Name() string { return c.name }

// Connected reports whether a live connection exists.
func (c *Client) Connected() bool { return c.vault != nil }

// Connect establishes the connection to the vault process and authorizes the
// session. Idempotent: an established connection is left untouched.
func (c *Client) Connect() error {
	if c.vault != nil {
		c.log.Warn("vault connection already established", "vault", c.name)
		return c.Login()
	}

	c.log.Info("connecting to vault", "vault", c.name)
	vault, err := c.dispatcher.Dispatch(vaultProgID)
	if err != nil {
		return &ConnectionError{Vault: c.name, Err: err}
	}
	c.vault = vault
	return c.Login()
}

// Login authenticates the session using the caller's vault credentials.
// Idempotent: an already-authenticated session returns immediately without
// re-submitting credentials.
func (c *Client) Login() error {
	if c.vault == nil {
		return &ConnectionError{Vault: c.name, Err: fmt.Errorf("not connected")}
	}

	loggedIn, err := c.vault.Get("IsLoggedIn")
	if err != nil {
		return &ConnectionError{Vault: c.name, Err: err}
	}
	if loggedIn.Bool() {
		return nil
	}

	c.log.Info("authenticating vault credentials", "vault", c.name)
	if _, err := c.vault.Call("LoginAuto", c.name, 0); err != nil {
		return &ConnectionError{Vault: c.name, Err: err}
	}

	loggedIn, err = c.vault.Get("IsLoggedIn")
	if err != nil {
		return &ConnectionError{Vault: c.name, Err: err}
	}
	if !loggedIn.Bool() {
		return &ConnectionError{Vault: c.name, Err: fmt.Errorf("login attempt failed")}
	}
	return nil
}

// Disconnect releases the connection handle.
func (c *Client) Disconnect() {
	if c.vault != nil {
		c.vault.Release()
		c.vault = nil
	}
}

// fileHandle resolves the folder and file automation objects for loc. Lookups
// are by path string; locks are keyed by the folder's opaque numeric ID plus
// the file name.
func (c *Client) fileHandle(loc location.Location) (folder, file com.Object, err error) {
	if c.vault == nil {
		return nil, nil, fmt.Errorf("not connected to vault %q", c.name)
	}

	folderResult, err := c.vault.Call("GetFolderFromPath", loc.Directory())
	if err != nil {
		return nil, nil, fmt.Errorf("resolving vault folder %s: %w", loc.Directory(), err)
	}
	folder = folderResult.Object()
	if folder == nil {
		return nil, nil, fmt.Errorf("folder %s is not in the vault", loc.Directory())
	}

	fileResult, err := folder.Call("GetFile", loc.Name())
	if err != nil {
		return nil, nil, fmt.Errorf("resolving vault file %s: %w", loc.Name(), err)
	}
	file = fileResult.Object()
	if file == nil {
		return nil, nil, fmt.Errorf("file %s is not in the vault", loc.Name())
	}
	return folder, file, nil
}
