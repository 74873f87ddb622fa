package activity

import (
	"context"
	"log/slog"
	"path"
	"strings"

	"github.com/odyssey-erp/roleguard/internal/i18n"
	"github.com/odyssey-erp/roleguard/internal/shared"
)

// MediaSource exposes the attachment data needed to name a media file. Every
// method may return an empty string when the host has no value.
type MediaSource interface {
	AttachmentMetadata(ctx context.Context, id int64) (map[string]any, error)
	AttachedFile(ctx context.Context, id int64) (string, error)
	Title(ctx context.Context, id int64) (string, error)
}

func (m *Monitor) registerMediaHandlers() {
	on(m, KindMediaUploaded, func(ctx context.Context, actor shared.Actor, ev MediaUploaded) (record, bool) {
		name := m.fileName(ctx, ev.AttachmentID, ev.FileName)
		return emit(actor, ActionMediaUpload, m.sprintf(i18n.MsgMediaUploaded, actor.Name(), name, extensionLabel(name)))
	})
	on(m, KindMediaUploadCompleted, func(_ context.Context, actor shared.Actor, ev MediaUploadCompleted) (record, bool) {
		if strings.TrimSpace(ev.File) == "" {
			return skip()
		}
		name := path.Base(ev.File)
		kind := strings.ToUpper(strings.TrimSpace(ev.Type))
		if kind == "" {
			kind = extensionLabel(name)
		}
		return emit(actor, ActionMediaUploadDone, m.sprintf(i18n.MsgMediaUploadCompleted, actor.Name(), name, kind))
	})
	on(m, KindMediaMetadataGenerated, func(ctx context.Context, actor shared.Actor, ev MediaMetadataGenerated) (record, bool) {
		if len(ev.Metadata) == 0 {
			return skip()
		}
		name := m.fileName(ctx, ev.AttachmentID, metadataFile(ev.Metadata))
		width, height := intValue(ev.Metadata["width"]), intValue(ev.Metadata["height"])
		if width > 0 && height > 0 {
			return emit(actor, ActionMediaProcess, m.sprintf(i18n.MsgMediaImageProcessed, actor.Name(), name, width, height))
		}
		return emit(actor, ActionMediaProcess, m.sprintf(i18n.MsgMediaProcessed, actor.Name(), name))
	})
	on(m, KindMediaUpdated, func(ctx context.Context, actor shared.Actor, ev MediaUpdated) (record, bool) {
		return emit(actor, ActionMediaUpdate, m.sprintf(i18n.MsgMediaUpdated, actor.Name(), m.fileName(ctx, ev.AttachmentID, "")))
	})
	on(m, KindMediaDeleting, func(ctx context.Context, actor shared.Actor, ev MediaDeleting) (record, bool) {
		return emit(actor, ActionMediaDeletion, m.sprintf(i18n.MsgMediaDeleted, actor.Name(), m.fileName(ctx, ev.AttachmentID, ev.FileName)))
	})
}

// fileName resolves a display name for an attachment in order: the stored
// metadata file, the attached-file pointer, the title, the name carried by the
// event, and finally a placeholder carrying the id.
func (m *Monitor) fileName(ctx context.Context, id int64, supplied string) string {
	if name := m.storedFileName(ctx, id); name != "" {
		return name
	}
	if name := strings.TrimSpace(supplied); name != "" {
		return path.Base(name)
	}
	return m.sprintf(i18n.MsgAttachmentPlaceholder, id)
}

func (m *Monitor) storedFileName(ctx context.Context, id int64) string {
	if m.media == nil || id <= 0 {
		return ""
	}
	if meta, err := m.media.AttachmentMetadata(ctx, id); err != nil {
		m.logger.Debug("activity: attachment metadata", slog.Int64("attachment_id", id), slog.Any("error", err))
	} else if file := metadataFile(meta); file != "" {
		return path.Base(file)
	}
	if file, err := m.media.AttachedFile(ctx, id); err != nil {
		m.logger.Debug("activity: attached file", slog.Int64("attachment_id", id), slog.Any("error", err))
	} else if strings.TrimSpace(file) != "" {
		return path.Base(file)
	}
	if title, err := m.media.Title(ctx, id); err != nil {
		m.logger.Debug("activity: attachment title", slog.Int64("attachment_id", id), slog.Any("error", err))
	} else if title = strings.TrimSpace(title); title != "" {
		return title
	}
	return ""
}

func metadataFile(meta map[string]any) string {
	if meta == nil {
		return ""
	}
	file, _ := meta["file"].(string)
	return strings.TrimSpace(file)
}

func extensionLabel(name string) string {
	ext := strings.TrimPrefix(path.Ext(name), ".")
	if ext == "" {
		return "FILE"
	}
	return strings.ToUpper(ext)
}

func intValue(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
