package emailsvc

import (
	"bytes"
	"log"
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/boletin/core"
	logsvc "github.com/trezcool/boletin/services/logger"
	"github.com/trezcool/boletin/tests"
)

func TestConsoleService_format(t *testing.T) {
	conf := testutil.NewConfig()
	svc := consoleService{from: conf.DefaultFromEmail, subjPrefix: "[Boletin] "}

	msg := core.EmailMessage{
		To:      []mail.Address{{Name: "Secretary", Address: "secretary@boletin.test"}},
		Subject: "Roster audit",
		BodyStr: "see attachment",
	}
	require.NoError(t, msg.Render())
	require.NoError(t, msg.Attach(strings.NewReader("a,b\n1,2\n"), "report.csv", "text/csv"))

	body, err := svc.format(msg)
	require.NoError(t, err)
	assert.Contains(t, body, "Subject: [Boletin] Roster audit\r\n")
	assert.Contains(t, body, `To: "Secretary" <secretary@boletin.test>`)
	assert.Contains(t, body, "see attachment")
	assert.Contains(t, body, "attachment; filename=report.csv")
	assert.NotContains(t, body, "CC:")
}

func TestConsoleServiceMock_SendMessages(t *testing.T) {
	conf := testutil.NewConfig()
	svc := NewConsoleServiceMock(conf, logsvc.NewRollbarLogger(log.New(&bytes.Buffer{}, "", 0), conf))

	svc.SendMessages(
		&core.EmailMessage{To: conf.AuditRecipients, Subject: "one", BodyStr: "hello"},
		&core.EmailMessage{Subject: "no recipients", BodyStr: "hello"},
	)
	svc.Wait()

	sent := svc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "one", sent[0].Subject)
	assert.Equal(t, "hello", sent[0].TextContent)
}
