package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/boletin/core"
	"github.com/trezcool/boletin/core/roster"
)

var auditHeader = []string{"assignment_id", "student_id", "subgroup", "period_start", "period_end", "created_at"}

// audit prints the orphaned assignments of a subject-course as CSV and, with notify, mails them.
func (cli *commandLine) audit(subjectCourseID string, notify bool) error {
	orphans, err := cli.rosterSvc.FindOrphans(context.Background(), cliCaller, subjectCourseID)
	if err != nil {
		return errors.Wrap(err, "finding orphaned assignments")
	}

	report := new(bytes.Buffer)
	if err = writeAuditCSV(report, orphans); err != nil {
		return err
	}
	if _, err = io.Copy(cli.out, bytes.NewReader(report.Bytes())); err != nil {
		return errors.Wrap(err, "printing report")
	}
	_, _ = fmt.Fprintf(cli.out, "%d orphaned assignment(s)\n", len(orphans))

	if !notify || len(orphans) == 0 {
		return nil
	}
	if len(cli.conf.AuditRecipients) == 0 {
		return errors.New("no audit recipients configured")
	}

	msg := &core.EmailMessage{
		To:      cli.conf.AuditRecipients,
		Subject: fmt.Sprintf("Roster audit: %d orphaned assignment(s)", len(orphans)),
		BodyStr: fmt.Sprintf(
			"%d active assignment(s) of subject-course %s belong to students no longer enrolled in its course.\n"+
				"The list is attached.",
			len(orphans), subjectCourseID,
		),
	}
	filename := fmt.Sprintf("orphans-%s-%s.csv", subjectCourseID, time.Now().UTC().Format("20060102"))
	if err = msg.Attach(report, filename, "text/csv"); err != nil {
		return errors.Wrap(err, "attaching report")
	}
	cli.mailSvc.SendMessages(msg)
	return nil
}

func writeAuditCSV(w io.Writer, orphans []roster.Assignment) error {
	cw := csv.NewWriter(w)
	_ = cw.Write(auditHeader)
	for _, a := range orphans {
		_ = cw.Write([]string{
			a.ID, a.StudentID, a.Subgroup, a.PeriodStart, a.PeriodEnd, a.CreatedAt.Format(time.RFC3339),
		})
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "writing report")
}
