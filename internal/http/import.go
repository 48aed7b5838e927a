package http

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/filmrec/filmrec/internal/importers"
	"github.com/filmrec/filmrec/internal/letterboxd"
	"github.com/filmrec/filmrec/internal/tasks"
)

// Maximum size for uploaded CSV exports (10 MB). Even a decade of
// diary entries stays well under this.
const maxExportFileSize = 10 * 1024 * 1024

// ImportController handles Letterboxd CSV export uploads.
type ImportController struct {
	importer   *importers.Importer
	taskClient *tasks.Client
}

func NewImportController(importer *importers.Importer, taskClient *tasks.Client) *ImportController {
	return &ImportController{
		importer:   importer,
		taskClient: taskClient,
	}
}

// ImportResult is the response body of the import endpoint.
type ImportResult struct {
	importers.Counters
	Warnings []string `json:"warnings,omitempty"`
}

// Import accepts a multipart upload of Letterboxd export files under
// the "reviews", "watchlist" and "likes" fields (the export also names
// the likes file "films", which is accepted too). At least one file
// must be present.
func (ctrl *ImportController) Import(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var src importers.Sources
	var warnings []string
	var anyFile bool

	rows, fileWarnings, present, ok := ctrl.parseUploadedCSV(c, "reviews")
	if !ok {
		return
	}
	src.Reviews = rows
	warnings = append(warnings, fileWarnings...)
	anyFile = anyFile || present

	rows, fileWarnings, present, ok = ctrl.parseUploadedCSV(c, "watchlist")
	if !ok {
		return
	}
	src.Watchlist = rows
	warnings = append(warnings, fileWarnings...)
	anyFile = anyFile || present

	rows, fileWarnings, present, ok = ctrl.parseUploadedCSV(c, "likes")
	if !ok {
		return
	}
	if !present {
		// The likes export downloads as films.csv.
		rows, fileWarnings, present, ok = ctrl.parseUploadedCSV(c, "films")
		if !ok {
			return
		}
	}
	src.Likes = rows
	warnings = append(warnings, fileWarnings...)
	anyFile = anyFile || present

	// A supplied file with no data rows is a valid, empty export; only a
	// request carrying no file at all is rejected.
	if !anyFile {
		respondBadRequest(c, "no export files provided: expected reviews, watchlist or likes")
		return
	}

	counters, err := ctrl.importer.Run(userID, src)
	if err != nil {
		respondInternalError(c, err, "letterboxd import")
		return
	}

	ctrl.enqueueEnrichment()

	c.JSON(http.StatusOK, ImportResult{
		Counters: *counters,
		Warnings: warnings,
	})
}

// parseUploadedCSV reads one optional export file from the multipart
// form. A missing field is not an error; an unreadable file is. The
// present flag reports whether the field carried a file at all, even
// one with no data rows.
func (ctrl *ImportController) parseUploadedCSV(c *gin.Context, field string) (rows []letterboxd.Row, warnings []string, present, ok bool) {
	file, header, err := c.Request.FormFile(field)
	if err != nil {
		return nil, nil, false, true // field absent
	}
	defer file.Close()

	if header.Size > maxExportFileSize {
		respondBadRequest(c, fmt.Sprintf("%s file too large (max %d MB)", field, maxExportFileSize/(1024*1024)))
		return nil, nil, true, false
	}

	rows, parseWarnings, err := letterboxd.ParseExportCSV(file)
	if err != nil {
		respondBadRequest(c, fmt.Sprintf("%s file: %v", field, err))
		return nil, nil, true, false
	}

	prefixed := make([]string, len(parseWarnings))
	for i, w := range parseWarnings {
		prefixed[i] = field + ": " + w
	}
	return rows, prefixed, true, true
}

// enqueueEnrichment schedules a catalog enrichment pass after an import
// so fresh entries pick up TMDb metadata. Best effort, imports succeed
// without a task queue.
func (ctrl *ImportController) enqueueEnrichment() {
	if ctrl.taskClient == nil {
		return
	}
	if _, err := ctrl.taskClient.Add(tasks.EnrichCatalogTask{}).Save(); err != nil {
		// The import itself already committed.
		log.Printf("failed to enqueue catalog enrichment: %v", err)
	}
}
