package proxy

import (
	"context"
	"fmt"

	handleguard "github.com/wippyai/handle-guard"
)

// Source issues handles and takes them back.
type Source interface {
	handleguard.Releaser
	Open(ctx context.Context) (handleguard.Handle, error)
}

// open takes a handle from src and installs it into g.
func open(ctx context.Context, g *handleguard.Guard, src Source) error {
	h, err := src.Open(ctx)
	if err != nil {
		return err
	}
	g.Install(h, src)
	return nil
}

// Connection is a proxy for a foreign network connection.
type Connection struct {
	handleguard.Guard
	Endpoint string
}

// NewConnection opens a connection handle from src.
func NewConnection(ctx context.Context, src Source, endpoint string) (*Connection, error) {
	c := &Connection{Endpoint: endpoint}
	if err := open(ctx, &c.Guard, src); err != nil {
		return nil, fmt.Errorf("open connection to %s: %w", endpoint, err)
	}
	return c, nil
}

// Close releases the connection handle. It may be called more than once.
func (c *Connection) Close(ctx context.Context) {
	c.Release(ctx)
}

func (c *Connection) String() string {
	return fmt.Sprintf("connection(%s)#%d", c.Endpoint, c.Handle())
}

// Credential is a proxy for a foreign credential.
type Credential struct {
	handleguard.Guard
	Subject string
}

// NewCredential opens a credential handle from src.
func NewCredential(ctx context.Context, src Source, subject string) (*Credential, error) {
	c := &Credential{Subject: subject}
	if err := open(ctx, &c.Guard, src); err != nil {
		return nil, fmt.Errorf("open credential for %s: %w", subject, err)
	}
	return c, nil
}

// Close releases the credential handle.
func (c *Credential) Close(ctx context.Context) {
	c.Release(ctx)
}

func (c *Credential) String() string {
	return fmt.Sprintf("credential(%s)#%d", c.Subject, c.Handle())
}

// Wallet is a proxy for a foreign wallet.
type Wallet struct {
	handleguard.Guard
	Name string
}

// NewWallet opens a wallet handle from src.
func NewWallet(ctx context.Context, src Source, name string) (*Wallet, error) {
	w := &Wallet{Name: name}
	if err := open(ctx, &w.Guard, src); err != nil {
		return nil, fmt.Errorf("open wallet %s: %w", name, err)
	}
	return w, nil
}

// Close releases the wallet handle.
func (w *Wallet) Close(ctx context.Context) {
	w.Release(ctx)
}

func (w *Wallet) String() string {
	return fmt.Sprintf("wallet(%s)#%d", w.Name, w.Handle())
}
