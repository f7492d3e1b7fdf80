package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/rutvikswami/smartpark-complete/internal/domain"
	"github.com/rutvikswami/smartpark-complete/internal/repository"
)

// MonitorService nhận event thô từ vision monitor (qua SQS hoặc HTTP),
// ghi audit log rồi phân loại theo message_type và chuyển cho service
// tương ứng xử lý.
type MonitorService struct {
	parkingService *ParkingService
	statusService  *StatusService
	eventLogRepo   repository.MonitorEventsLogRepository
}

func NewMonitorService(
	parkingService *ParkingService,
	statusService *StatusService,
	eventLogRepo repository.MonitorEventsLogRepository,
) *MonitorService {
	return &MonitorService{
		parkingService: parkingService,
		statusService:  statusService,
		eventLogRepo:   eventLogRepo,
	}
}

// HandleMonitorEvent xử lý một message từ queue. authorizedArea khác nil
// nghĩa là event đến qua HTTP với token monitor: chỉ được phép tác động
// lên khu vực mà token đã claim.
func (s *MonitorService) HandleMonitorEvent(ctx context.Context, messageBody string, authorizedArea *uuid.UUID) error {
	log.Printf("MonitorService: Xử lý sự kiện: %s", messageBody)

	var rawPayload json.RawMessage
	if err := json.Unmarshal([]byte(messageBody), &rawPayload); err != nil {
		log.Printf("Lỗi unmarshal raw payload: %v. Body: %s", err, messageBody)
		s.audit(&domain.MonitorEventLog{
			ReceivedAt:      time.Now().UTC(),
			Payload:         json.RawMessage(messageBody),
			ProcessedStatus: "error",
			ProcessingNotes: fmt.Sprintf("Failed to unmarshal raw payload: %v", err),
		})
		return fmt.Errorf("lỗi unmarshal raw payload: %w", err)
	}

	var genericEvent domain.GenericMonitorEvent
	if err := json.Unmarshal(rawPayload, &genericEvent); err != nil {
		log.Printf("Lỗi unmarshal generic monitor event: %v. Body: %s", err, messageBody)
		s.audit(&domain.MonitorEventLog{
			ReceivedAt:      time.Now().UTC(),
			SystemID:        genericEvent.SystemID,
			Payload:         rawPayload,
			ProcessedStatus: "error",
			ProcessingNotes: fmt.Sprintf("Failed to unmarshal generic event: %v", err),
		})
		return err
	}
	genericEvent.RawPayload = rawPayload

	logEntry := &domain.MonitorEventLog{
		ReceivedAt:      time.Now().UTC(),
		SystemID:        genericEvent.SystemID,
		MessageType:     genericEvent.MessageType,
		Payload:         genericEvent.RawPayload,
		ProcessedStatus: "pending",
	}
	s.audit(logEntry)

	var processingError error

	switch genericEvent.MessageType {
	case "slot_status":
		var event domain.MonitorSlotStatusEvent
		if err := json.Unmarshal(genericEvent.RawPayload, &event); err == nil {
			event.GenericMonitorEvent = genericEvent
			if authorizedArea != nil && event.ParkingAreaID != *authorizedArea {
				processingError = fmt.Errorf("monitor '%s' không có quyền trên khu vực %s",
					genericEvent.SystemID, event.ParkingAreaID)
			} else {
				processingError = s.parkingService.UpdateSlotStatusFromMonitor(ctx, event)
			}
		} else {
			processingError = fmt.Errorf("lỗi unmarshal slot_status event: %w", err)
		}

	case "heartbeat":
		var event domain.MonitorHeartbeatEvent
		if err := json.Unmarshal(genericEvent.RawPayload, &event); err == nil {
			event.GenericMonitorEvent = genericEvent
			processingError = s.statusService.HandleHeartbeat(ctx, genericEvent.SystemID, event, parseEventTime(genericEvent.Timestamp))
		} else {
			processingError = fmt.Errorf("lỗi unmarshal heartbeat event: %w", err)
		}

	case "going_offline":
		var event domain.MonitorGoingOfflineEvent
		if err := json.Unmarshal(genericEvent.RawPayload, &event); err == nil {
			event.GenericMonitorEvent = genericEvent
			processingError = s.statusService.HandleGoingOffline(ctx, genericEvent.SystemID, event)
		} else {
			processingError = fmt.Errorf("lỗi unmarshal going_offline event: %w", err)
		}

	default:
		log.Printf("MonitorService: Loại message không được xử lý: '%s'", genericEvent.MessageType)
		processingError = nil // Không coi là lỗi, chỉ log
	}

	if processingError != nil {
		log.Printf("Lỗi khi xử lý sự kiện loại '%s' (System: %s): %v",
			genericEvent.MessageType, genericEvent.SystemID, processingError)
	}

	return processingError
}

func (s *MonitorService) audit(entry *domain.MonitorEventLog) {
	if s.eventLogRepo == nil {
		return
	}
	if err := s.eventLogRepo.Create(context.Background(), entry); err != nil {
		log.Printf("Lỗi khi ghi log sự kiện monitor vào DB: %v", err)
	}
}

// parseEventTime parse timestamp ISO 8601 từ monitor; chuỗi hỏng hoặc
// rỗng rơi về giờ server.
func parseEventTime(raw string) time.Time {
	if raw == "" {
		return time.Now().UTC()
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, raw); err != nil {
			return time.Now().UTC()
		}
	}
	return t.UTC()
}
