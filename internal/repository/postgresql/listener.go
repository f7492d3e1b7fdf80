package postgresql

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/lib/pq"

	"github.com/rutvikswami/smartpark-complete/internal/domain"
)

// ChangeListener nghe channel pg_notify và đẩy từng ChangeNotification
// cho callback (thường là WebSocket manager). Đây là primitive
// "subscribe theo bảng": client nhận tín hiệu rồi tự fetch lại.
type ChangeListener struct {
	listener *pq.Listener
	onChange func(domain.ChangeNotification)
}

func NewChangeListener(dsn string, onChange func(domain.ChangeNotification)) *ChangeListener {
	listener := pq.NewListener(dsn, 10*time.Second, time.Minute, func(event pq.ListenerEventType, err error) {
		if err != nil {
			log.Printf("ChangeListener: sự kiện listener %v: %v", event, err)
		}
	})
	return &ChangeListener{listener: listener, onChange: onChange}
}

// Start chặn cho tới khi ctx bị hủy. Kết nối rớt thì pq.Listener tự
// reconnect; client phía trên nên fetch lại toàn bộ sau khoảng lặng dài.
func (l *ChangeListener) Start(ctx context.Context) error {
	if err := l.listener.Listen(ChangeChannel); err != nil {
		return err
	}
	log.Printf("ChangeListener: đang lắng nghe channel '%s'", ChangeChannel)

	defer l.listener.Close()
	for {
		select {
		case <-ctx.Done():
			log.Println("ChangeListener: context cancelled, stopping.")
			return nil
		case notification := <-l.listener.Notify:
			if notification == nil {
				// nil = listener vừa reconnect, có thể đã lỡ notification.
				continue
			}
			var change domain.ChangeNotification
			if err := json.Unmarshal([]byte(notification.Extra), &change); err != nil {
				log.Printf("ChangeListener: lỗi unmarshal notification: %v. Payload: %s", err, notification.Extra)
				continue
			}
			l.onChange(change)
		case <-time.After(90 * time.Second):
			// Ping định kỳ để phát hiện kết nối chết sớm.
			if err := l.listener.Ping(); err != nil {
				log.Printf("ChangeListener: lỗi ping: %v", err)
			}
		}
	}
}
