// Package storage provides database access for the coach engine.
package storage

import "time"

// KnowledgeEntry is a single knowledge item in the store. Entries are written
// by the ingestion side and treated as read-only by retrieval.
type KnowledgeEntry struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	SourceURL string `json:"source_url,omitempty"`
	Tags      string `json:"tags,omitempty"` // comma-joined lowercase tags
}

// Feedback captures post-session feedback from a client.
type Feedback struct {
	ID              int64     `json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	SessionID       string    `json:"session_id,omitempty"`
	Goal            string    `json:"goal,omitempty"`
	ExperienceLevel string    `json:"experience_level,omitempty"`
	RPE             *int      `json:"rpe,omitempty"`
	Adherence       *int      `json:"adherence,omitempty"`
	Notes           string    `json:"notes,omitempty"`
}
