package main

import (
	"time"

	"photovault/internal/history"
)

// runView is the JSON shape of a history run row shared by the status
// and history commands.
type runView struct {
	ID         string     `json:"id"`
	Kind       string     `json:"kind"`
	AlbumID    string     `json:"album_id,omitempty"`
	Status     string     `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Total      int        `json:"total"`
	Downloaded int        `json:"downloaded"`
	Processed  int        `json:"processed"`
	Skipped    int        `json:"skipped"`
	Errors     int        `json:"errors"`
	Duration   string     `json:"duration"`
}

func newRunView(run history.Run) runView {
	return runView{
		ID:         run.ID,
		Kind:       run.Kind,
		AlbumID:    run.AlbumID,
		Status:     run.Status,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		Total:      run.Total,
		Downloaded: run.Downloaded,
		Processed:  run.Processed,
		Skipped:    run.Skipped,
		Errors:     run.Errors,
		Duration:   run.Duration().Round(time.Second).String(),
	}
}

// checkView is the JSON shape of one preflight result.
type checkView struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Fatal  bool   `json:"fatal,omitempty"`
	Detail string `json:"detail,omitempty"`
}

func scopeCell(albumID string) string {
	if albumID == "" {
		return "library"
	}
	return albumID
}
