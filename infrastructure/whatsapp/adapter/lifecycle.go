package adapter

import (
	"context"
	"fmt"
	"strings"

	domainSession "github.com/AzielCF/piebot/domains/session"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waCompanionReg"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"
)

func dialectFor(uri string) string {
	if strings.HasPrefix(uri, "postgres:") || strings.HasPrefix(uri, "postgresql:") {
		return "postgres"
	}
	return "sqlite3"
}

func (wa *WhatsAppAdapter) openStore(ctx context.Context) (*sqlstore.Container, error) {
	wa.mu.Lock()
	defer wa.mu.Unlock()
	if wa.container != nil {
		return wa.container, nil
	}

	dbLog := waLog.Stdout("Database", wa.cfg.LogLevel, true)
	container, err := sqlstore.New(ctx, dialectFor(wa.cfg.DBURI), wa.cfg.DBURI, dbLog)
	if err != nil {
		return nil, fmt.Errorf("failed to open device store: %w", err)
	}
	wa.container = container
	return container, nil
}

func (wa *WhatsAppAdapter) configureDeviceProps() {
	osName := wa.cfg.OS
	if osName == "" {
		osName = "PieBot"
	}
	store.DeviceProps.PlatformType = waCompanionReg.DeviceProps_CHROME.Enum()
	store.DeviceProps.Os = proto.String(osName)
}

// Initialize builds a fresh client from the stored device and connects it.
// Without a stored device a QR login is started and codes are reported to
// the listener.
func (wa *WhatsAppAdapter) Initialize(ctx context.Context) error {
	if wa.currentClient() != nil {
		return fmt.Errorf("chat session already initialized")
	}

	container, err := wa.openStore(ctx)
	if err != nil {
		return err
	}

	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		return fmt.Errorf("failed to get device: %w", err)
	}
	if device == nil {
		device = container.NewDevice()
	}

	wa.configureDeviceProps()

	client := whatsmeow.NewClient(device, waLog.Stdout("Client", wa.cfg.LogLevel, true))
	client.EnableAutoReconnect = false
	client.AutoTrustIdentity = true
	handlerID := client.AddEventHandler(wa.handleEvent)

	wa.mu.Lock()
	wa.client = client
	wa.handlerID = handlerID
	wa.mu.Unlock()

	if client.Store.ID == nil {
		qrCtx, cancel := context.WithCancel(context.Background())
		qrChan, err := client.GetQRChannel(qrCtx)
		if err != nil {
			cancel()
			wa.teardown()
			return fmt.Errorf("failed to get QR channel: %w", err)
		}
		wa.mu.Lock()
		wa.stopQR = cancel
		wa.mu.Unlock()

		go wa.watchQR(qrChan)
		logrus.Info("[WHATSAPP] No stored session, waiting for QR login")
	} else {
		logrus.Infof("[WHATSAPP] Restoring session for %s", client.Store.ID.User)
	}

	if err := client.Connect(); err != nil {
		wa.teardown()
		return fmt.Errorf("failed to connect: %w", err)
	}
	return nil
}

func (wa *WhatsAppAdapter) watchQR(qrChan <-chan whatsmeow.QRChannelItem) {
	for evt := range qrChan {
		switch evt.Event {
		case whatsmeow.QRChannelEventCode:
			code := evt.Code
			wa.notify(func(l domainSession.Listener) { l.HandleQR(code) })
		case whatsmeow.QRChannelSuccess.Event:
			logrus.Info("[WHATSAPP] QR login succeeded")
		case whatsmeow.QRChannelTimeout.Event:
			wa.notify(func(l domainSession.Listener) { l.HandleDisconnected("QR login timed out") })
		case whatsmeow.QRChannelEventError:
			reason := "QR login failed"
			if evt.Error != nil {
				reason = fmt.Sprintf("QR login failed: %v", evt.Error)
			}
			wa.notify(func(l domainSession.Listener) { l.HandleAuthFailure(reason) })
		default:
			reason := "QR login failed: " + evt.Event
			wa.notify(func(l domainSession.Listener) { l.HandleAuthFailure(reason) })
		}
	}
}

// Destroy disconnects and drops the client. The device store stays open for
// the next Initialize.
func (wa *WhatsAppAdapter) Destroy(ctx context.Context) error {
	wa.teardown()
	return nil
}

func (wa *WhatsAppAdapter) teardown() {
	wa.mu.Lock()
	client := wa.client
	handlerID := wa.handlerID
	stopQR := wa.stopQR
	wa.client = nil
	wa.handlerID = 0
	wa.stopQR = nil
	wa.mu.Unlock()

	if stopQR != nil {
		stopQR()
	}
	if client == nil {
		return
	}
	if handlerID != 0 {
		client.RemoveEventHandler(handlerID)
	}
	client.Disconnect()
	logrus.Debug("[WHATSAPP] Client disconnected")
}
