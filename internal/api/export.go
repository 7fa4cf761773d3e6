package api

import (
	"log"
	"net/http"

	"membership-api/internal/export"
)

func writeCSVResponse(w http.ResponseWriter, filename string, table export.Table) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := export.WriteCSV(w, table); err != nil {
		log.Printf("[api] csv export %s: %v", filename, err)
	}
}

func writeXLSXResponse(w http.ResponseWriter, filename string, table export.Table) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := export.WriteXLSX(w, table); err != nil {
		log.Printf("[api] xlsx export %s: %v", filename, err)
	}
}
