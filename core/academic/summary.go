package academic

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/core"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/campus"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/finance"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/internship"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/placement"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/project"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/resource"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/student"
)

// Summary is the dashboard overview served by /v1/analytics/summary.
type Summary struct {
	Collections  map[string]int64 `json:"collections"`
	Fees         map[string]int64 `json:"fees"`
	Applications map[string]int64 `json:"applications"`
	Pending      map[string]int64 `json:"pending"`
}

var summaryCollections = []string{
	student.Collection,
	AssignmentCollection, EventCollection, PollCollection, SkillCollection, MentoringCollection,
	UploadCollection, AnalyticsCollection, NotificationCollection, TimetableCollection, AttendanceCollection,
	finance.Collection,
	campus.HostelCollection, campus.BookCollection, campus.IDCardCollection, campus.HallTicketCollection, campus.CertificateCollection,
	internship.BatchCollection, internship.CompanyCollection, internship.DocumentCollection,
	project.GroupCollection, project.DocumentCollection, project.EvaluationCollection,
	placement.CompanyCollection, placement.ApplicationCollection, placement.RoundCollection,
}

var reviewedCollections = map[string]string{
	"certificates":        campus.CertificateCollection,
	"internshipDocuments": internship.DocumentCollection,
	"projectDocuments":    project.DocumentCollection,
}

// Summary counts the documents of every collection, fees and applications by status,
// and the documents still awaiting review.
func (svc *Service) Summary(ctx context.Context) (*Summary, error) {
	type count struct {
		dst    map[string]int64
		key    string
		coll   string
		filter core.Filter
	}

	sum := &Summary{
		Collections:  make(map[string]int64, len(summaryCollections)),
		Fees:         make(map[string]int64, 2),
		Applications: make(map[string]int64, len(placement.ApplicationStatuses)),
		Pending:      make(map[string]int64, len(reviewedCollections)),
	}

	var counts []count
	for _, coll := range summaryCollections {
		counts = append(counts, count{sum.Collections, coll, coll, nil})
	}
	for _, st := range []finance.FeeStatus{finance.Unpaid, finance.Paid} {
		counts = append(counts, count{sum.Fees, string(st), finance.Collection, core.Filter{"status": string(st)}})
	}
	for _, st := range placement.ApplicationStatuses {
		counts = append(counts, count{sum.Applications, string(st), placement.ApplicationCollection, core.Filter{"status": string(st)}})
	}
	for key, coll := range reviewedCollections {
		counts = append(counts, count{sum.Pending, key, coll, core.Filter{"status": string(resource.ReviewPending)}})
	}

	results := make([]int64, len(counts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, c := range counts {
		g.Go(func() error {
			n, err := svc.store.Count(gctx, c.coll, c.filter)
			if err != nil {
				return errors.Wrapf(err, "counting %s", c.coll)
			}
			results[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i, c := range counts {
		c.dst[c.key] = results[i]
	}
	return sum, nil
}
