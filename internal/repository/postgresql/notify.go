package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"

	"github.com/rutvikswami/smartpark-complete/internal/domain"
)

// ChangeChannel là channel LISTEN/NOTIFY duy nhất cho mọi thay đổi dữ liệu.
const ChangeChannel = "smartpark_changes"

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// notifyChange phát một ChangeNotification qua pg_notify. Gọi bên trong
// transaction thì notification chỉ được giao khi commit, nên listener
// không bao giờ thấy thay đổi của transaction đã rollback.
func notifyChange(ctx context.Context, q execer, change domain.ChangeNotification) {
	payload, err := json.Marshal(change)
	if err != nil {
		log.Printf("notifyChange: lỗi marshal notification: %v", err)
		return
	}
	if _, err := q.ExecContext(ctx, `SELECT pg_notify($1, $2)`, ChangeChannel, string(payload)); err != nil {
		// Notification chỉ là tín hiệu refetch, mất thì client vẫn đúng
		// (chỉ chậm), nên không fail thao tác chính.
		log.Printf("notifyChange: lỗi pg_notify cho bảng %s: %v", change.Table, err)
	}
}
