package auth

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type memoryUser struct {
	id       string
	password string
}

// MemoryProvider is an in-process Provider for development and tests.
// It holds at most one active session, mirroring a browser-bound auth
// client.
type MemoryProvider struct {
	mu      sync.Mutex
	users   map[string]memoryUser
	session *Session
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{users: make(map[string]memoryUser)}
}

// Seed registers a user with a fixed identity without signing anyone in.
func (p *MemoryProvider) Seed(id, email, password string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users[email] = memoryUser{id: id, password: password}
}

func (p *MemoryProvider) SignUp(_ context.Context, email, password string) (*Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.users[email]; exists {
		return nil, ErrEmailTaken
	}
	u := memoryUser{id: uuid.NewString(), password: password}
	p.users[email] = u
	p.session = &Session{UserID: u.id, Email: email}
	return p.session, nil
}

func (p *MemoryProvider) SignInWithPassword(_ context.Context, email, password string) (*Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	u, exists := p.users[email]
	if !exists || u.password != password {
		return nil, ErrInvalidCredentials
	}
	p.session = &Session{UserID: u.id, Email: email}
	return p.session, nil
}

func (p *MemoryProvider) GetSession(_ context.Context) (*Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session == nil {
		return nil, nil
	}
	s := *p.session
	return &s, nil
}

func (p *MemoryProvider) SignOut(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.session = nil
	return nil
}
