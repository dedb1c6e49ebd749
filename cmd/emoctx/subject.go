package main

import (
	"errors"

	"github.com/sandevgo/tuskheart/internal/core"
	"github.com/spf13/cobra"
)

var errMissingSubject = errors.New("either --subject or --device is required")

type subjectFlags struct {
	userID   string
	deviceID string
}

func (f *subjectFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.userID, "subject", "s", "", "user id")
	cmd.Flags().StringVar(&f.deviceID, "device", "", "device id, used when no user id is known")
}

func (f *subjectFlags) subject() core.Subject {
	return core.Subject{UserID: f.userID, DeviceID: f.deviceID}
}

// key returns the storage key or an error when neither id is set.
func (f *subjectFlags) key() (string, error) {
	key := f.subject().Key()
	if key == "" {
		return "", errMissingSubject
	}
	return key, nil
}
