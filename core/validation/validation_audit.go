package validation

import (
	"log"
	"os"
	"sync"
)

var auditOnce sync.Once
var auditLogger *log.Logger

func getAuditLogger() *log.Logger {
	auditOnce.Do(func() {
		path := os.Getenv("MEDISHARE_VALIDATION_AUDIT_LOG")
		if path == "" {
			path = "validation_audit.log"
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Printf("[AUDIT] falling back to stderr: %v", err)
			auditLogger = log.New(os.Stderr, "[AUDIT] ", log.LstdFlags|log.LUTC)
			return
		}
		auditLogger = log.New(f, "[AUDIT] ", log.LstdFlags|log.LUTC)
	})
	return auditLogger
}

// AuditValidationError logs validation rejections (without PHI) to a file
func AuditValidationError(context, errMsg string) {
	logger := getAuditLogger()
	logger.Printf("%s | %s", context, errMsg)
}
