// internal/app/features/submissions/export.go
package submissions

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/applyhub/internal/app/system/auth"
	"github.com/dalemusser/applyhub/internal/app/system/timeouts"
	"github.com/dalemusser/applyhub/internal/domain/models"
)

// exportHeader is the fixed column order of the CSV export.
var exportHeader = []string{
	"Full Name",
	"Email",
	"Country Code",
	"Phone Number",
	"Date of Birth",
	"Grade",
	"Is BH Student",
	"Country",
	"School Name",
	"Subjects",
	"Motivation",
}

// ExportCSV handles GET /api/submissions/export. Rows come out newest
// first, matching the list view.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	subs, err := h.Store.List(ctx)
	if err != nil {
		h.Errs.ServerError(w, r, "export submissions", err, "Export failed")
		return
	}

	filename := "submissions-" + time.Now().UTC().Format("2006-01-02") + ".csv"

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, url.PathEscape(filename)))

	// UTF-8 BOM for Excel
	_, _ = w.Write([]byte{0xEF, 0xBB, 0xBF})

	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	defer cw.Flush()

	_ = cw.Write(exportHeader)
	for i := range subs {
		_ = cw.Write(exportRow(&subs[i]))
	}

	actor, _ := auth.IsAdmin(r)
	h.Audit.Exported(r.Context(), r, actor, len(subs))
}

func exportRow(sub *models.Submission) []string {
	bh := "No"
	if sub.IsBhStudent {
		bh = "Yes"
	}
	return []string{
		sub.FullName,
		sub.Email,
		sub.CountryCode,
		sub.Phone,
		sub.DOB,
		sub.Grade,
		bh,
		sub.Country,
		sub.School,
		strings.Join(sub.Subjects, "; "),
		sub.Motivation,
	}
}
