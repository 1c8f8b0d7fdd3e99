package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"smsnotes/internal/model"
)

// WriteAccountCSV writes an account and all of its notes as CSV: a header, one
// user row, then one row per note.
func WriteAccountCSV(w io.Writer, user *model.User, notes []model.Note) error {
	writer := csv.NewWriter(w)

	header := []string{"user_id", "user_username", "user_phone", "note_id", "note_text"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	userRow := []string{strconv.Itoa(user.ID), user.Username, user.Phone, "", ""}
	if err := writer.Write(userRow); err != nil {
		return fmt.Errorf("failed to write user row: %w", err)
	}

	for _, note := range notes {
		row := []string{"", "", "", strconv.FormatInt(note.ID, 10), note.Text}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write note row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}
