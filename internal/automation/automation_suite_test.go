package automation

import (
	"io"
	"log/slog"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestAutomationSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Automation Suite")
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
