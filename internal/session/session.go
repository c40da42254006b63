// Package session ties a live jar to the collections it was filled from, so
// the terminal and window front ends spin and remove balls the same way.
package session

import (
	"fmt"
	"log/slog"

	"github.com/san-kum/balljar/internal/ball"
	"github.com/san-kum/balljar/internal/sim"
	"github.com/san-kum/balljar/internal/storage"
)

// Session is one interactive view of a jar.
type Session struct {
	Jar         *sim.Jar
	Store       *storage.JarStore // nil disables persistence
	Collections storage.Collections
	Source      string
	Logger      *slog.Logger
}

func New(jar *sim.Jar, store *storage.JarStore, collections storage.Collections, source string, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{Jar: jar, Store: store, Collections: collections, Source: source, Logger: logger}
}

// persists reports whether changes to the jar are written to the today
// collection. Only a jar showing today mirrors a stored collection.
func (s *Session) persists() bool {
	return s.Store != nil && s.Source == ball.KindToday
}

// Spin draws a today ball and drops it into the jar. The ball is saved only
// when the jar shows today; elsewhere it is a preview and the message says so.
func (s *Session) Spin() (string, error) {
	b := ball.Draw(s.Jar.Rand(), ball.KindToday)
	if s.persists() {
		b = s.Collections.AddToday(b)
		if err := s.Store.Save(s.Collections); err != nil {
			s.Collections.RemoveToday(b.ID)
			s.Logger.Error("save jar", "err", err)
			return "save failed: " + err.Error(), err
		}
	}

	if _, err := s.Jar.Drop(b); err != nil {
		s.Logger.Error("drop ball", "id", b.ID, "err", err)
		return "drop failed: " + err.Error(), err
	}
	s.Logger.Debug("spin", "id", b.ID, "minutes", b.Minutes, "saved", s.persists())

	if !s.persists() {
		return fmt.Sprintf("spun %d minutes (preview, not saved to today)", b.Minutes), nil
	}
	return fmt.Sprintf("spun %d minutes", b.Minutes), nil
}

// RemoveNewest removes the most recently added body, and its ball from the
// today collection when the jar shows today.
func (s *Session) RemoveNewest() (string, error) {
	bodies := s.Jar.World.Snapshot().Bodies
	if len(bodies) == 0 {
		return "jar is empty", nil
	}
	newest := bodies[len(bodies)-1]
	s.Jar.World.RemoveBody(newest.ID)

	msg := "removed " + newest.ID
	if b, ok := ball.FromBody(newest); ok {
		msg = fmt.Sprintf("removed %d minutes", b.Minutes)
	}

	if s.persists() && s.Collections.RemoveToday(newest.ID) {
		if err := s.Store.Save(s.Collections); err != nil {
			s.Logger.Error("save jar", "err", err)
			return "save failed: " + err.Error(), err
		}
	}
	return msg, nil
}
