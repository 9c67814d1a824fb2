package producer

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yangxiaofu/gridiron-clock/internal/log"
	"github.com/yangxiaofu/gridiron-clock/internal/models"
)

type ParsedMessage struct {
	LineNumber        int
	Message           models.Message
	OriginalTimestamp time.Time
}

// ParseFile reads a play log: one JSON message per line, a game setup
// first and then one play result per resolved play. Lines exported from
// spreadsheets arrive wrapped in quotes with doubled internal quotes;
// both forms are accepted. Messages come back sorted by timestamp.
func ParseFile(filePath string) ([]ParsedMessage, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			log.Error("Failed to close file", zap.Error(closeErr))
		}
	}()

	scanner := bufio.NewScanner(file)

	// Increase buffer size for large lines
	const maxCapacity = 10 * 1024 * 1024 // 10MB
	buf := make([]byte, maxCapacity)
	scanner.Buffer(buf, maxCapacity)

	var messages []ParsedMessage
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		if len(strings.TrimSpace(line)) == 0 {
			continue
		}

		line = strings.ReplaceAll(line, `""`, `"`)
		if len(line) >= 2 && line[0] == '"' && line[len(line)-1] == '"' {
			line = line[1 : len(line)-1]
		}

		var msg models.Message
		if err := json.Unmarshal([]byte(line), &msg); err != nil {
			log.Warn("Failed to parse line as JSON",
				zap.Int("line_number", lineNum),
				zap.Error(err),
			)
			continue
		}

		// Skip messages that carry neither payload
		if msg.GameSetup == nil && msg.PlayResult == nil {
			continue
		}
		if msg.Header.TimeStampUtc.IsZero() {
			continue
		}
		if msg.Header.MessageGuid == "" {
			msg.Header.MessageGuid = uuid.NewString()
		}

		messages = append(messages, ParsedMessage{
			LineNumber:        lineNum,
			OriginalTimestamp: msg.Header.TimeStampUtc,
			Message:           msg,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	// Sort messages by timestamp
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].OriginalTimestamp.Before(messages[j].OriginalTimestamp)
	})

	log.Info("Successfully parsed messages", zap.Int("message_count", len(messages)))
	return messages, nil
}
