package usecase

import (
	"context"
	"sync"
	"time"

	domainSession "github.com/AzielCF/piebot/domains/session"
	pkgError "github.com/AzielCF/piebot/pkg/error"
	"github.com/sirupsen/logrus"
)

// SessionOptions configures the lifecycle. Zero values fall back to defaults.
type SessionOptions struct {
	MaxReconnectAttempts int
	ReconnectCooldown    time.Duration
	KeepAliveInterval    time.Duration
	InitTimeout          time.Duration
	QueueCapacity        int
	DeliveryTimeout      time.Duration

	// OnQR is called outside the lock for every fresh QR code.
	OnQR func(code string)
}

func (o SessionOptions) withDefaults() SessionOptions {
	if o.MaxReconnectAttempts <= 0 {
		o.MaxReconnectAttempts = 5
	}
	if o.ReconnectCooldown < 0 {
		o.ReconnectCooldown = 0
	}
	if o.KeepAliveInterval <= 0 {
		o.KeepAliveInterval = 5 * time.Minute
	}
	if o.QueueCapacity <= 0 {
		o.QueueCapacity = 100
	}
	if o.DeliveryTimeout <= 0 {
		o.DeliveryTimeout = 2 * time.Minute
	}
	return o
}

type serviceSession struct {
	chat domainSession.ChatSession
	opts SessionOptions

	mu          sync.Mutex
	state       domainSession.State
	qr          string
	attempts    int
	queue       []domainSession.OutboundMessage
	readySince  time.Time
	stopKeep    context.CancelFunc
	initTimer   *time.Timer
	restarting  bool
	fatal       bool
	closed      bool
	initialized bool

	// reinitializing is set while a restart waits on Initialize; a failure
	// reported then is kept in pendingRestart and replayed afterwards.
	reinitializing bool
	pendingRestart string

	// sendMu orders deliveries: the drain holds it exclusively so that
	// sends issued after Ready never overtake queued ones.
	sendMu sync.RWMutex

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	fatalCh chan error
}

// NewSessionService builds the lifecycle and subscribes it to the chat session.
func NewSessionService(chat domainSession.ChatSession, opts SessionOptions) domainSession.ISessionUsecase {
	ctx, cancel := context.WithCancel(context.Background())
	s := &serviceSession{
		chat:    chat,
		opts:    opts.withDefaults(),
		state:   domainSession.StateUninitialized,
		ctx:     ctx,
		cancel:  cancel,
		fatalCh: make(chan error, 1),
	}
	chat.Subscribe(s)
	return s
}

// Start initializes the transport. An initialization error goes through the
// same bounded restart path as a disconnect.
func (s *serviceSession) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return nil
	}
	s.initialized = true
	s.mu.Unlock()

	logrus.Info("[SESSION] Initializing chat session...")
	if err := s.chat.Initialize(ctx); err != nil {
		logrus.WithError(err).Error("[SESSION] Initialization failed")
		s.restart("initialization failed: " + err.Error())
		return nil
	}
	s.armInitTimer()
	return nil
}

func (s *serviceSession) HandleQR(code string) {
	s.mu.Lock()
	if s.closed || s.fatal {
		s.mu.Unlock()
		return
	}
	s.state = domainSession.StateAwaitingQR
	s.qr = code
	s.attempts = 0
	s.pendingRestart = ""
	s.stopInitTimerLocked()
	s.mu.Unlock()

	logrus.Info("[SESSION] QR code available at /qr")
	if s.opts.OnQR != nil {
		s.opts.OnQR(code)
	}
}

func (s *serviceSession) HandleAuthenticated() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.fatal {
		return
	}
	if s.state != domainSession.StateReady {
		s.state = domainSession.StateAuthenticated
	}
	logrus.Info("[SESSION] Authenticated")
}

func (s *serviceSession) HandleReady() {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	s.mu.Lock()
	if s.closed || s.fatal {
		s.mu.Unlock()
		return
	}
	if s.state != domainSession.StateAuthenticated {
		logrus.Debugf("[SESSION] Ready received in state %s", s.state)
	}
	s.state = domainSession.StateReady
	s.qr = ""
	s.attempts = 0
	s.readySince = time.Now()
	s.pendingRestart = ""
	s.stopInitTimerLocked()
	pending := s.queue
	s.queue = nil
	s.startKeepAliveLocked()
	s.mu.Unlock()

	logrus.Infof("[SESSION] Ready, connected as %s", displayName(s.chat.PushName()))

	if len(pending) > 0 {
		logrus.Infof("[SESSION] Delivering %d queued message(s)", len(pending))
	}
	for _, m := range pending {
		_ = s.deliver(m)
	}
}

func (s *serviceSession) HandleDisconnected(reason string) {
	s.mu.Lock()
	if s.closed || s.fatal {
		s.mu.Unlock()
		return
	}
	s.state = domainSession.StateDisconnected
	s.stopKeepAliveLocked()
	s.mu.Unlock()

	logrus.Warnf("[SESSION] Disconnected: %s", reason)
	s.restart(reason)
}

func (s *serviceSession) HandleAuthFailure(reason string) {
	s.mu.Lock()
	if s.closed || s.fatal {
		s.mu.Unlock()
		return
	}
	s.state = domainSession.StateReauthenticating
	s.stopKeepAliveLocked()
	s.mu.Unlock()

	logrus.Errorf("[SESSION] Authentication failure: %s", reason)
	s.restart(reason)
}

// restart tears the transport down and initializes it again after the
// cooldown, unless the reconnect ceiling was reached.
func (s *serviceSession) restart(reason string) {
	s.mu.Lock()
	if s.closed || s.fatal {
		s.mu.Unlock()
		return
	}
	if s.restarting {
		if s.reinitializing {
			s.pendingRestart = reason
			s.mu.Unlock()
			logrus.Debugf("[SESSION] Restart in progress, will retry after it: %s", reason)
			return
		}
		s.mu.Unlock()
		logrus.Debugf("[SESSION] Restart already in progress, ignoring: %s", reason)
		return
	}
	if s.attempts >= s.opts.MaxReconnectAttempts {
		s.fatal = true
		attempts := s.attempts
		s.stopInitTimerLocked()
		s.mu.Unlock()

		err := pkgError.SessionFatalError{Attempts: attempts, Reason: reason}
		logrus.WithError(err).Error("[SESSION] Maximum reconnect attempts reached")
		select {
		case s.fatalCh <- err:
		default:
		}
		return
	}
	s.attempts++
	attempt := s.attempts
	s.restarting = true
	s.stopInitTimerLocked()
	s.stopKeepAliveLocked()
	s.mu.Unlock()

	logrus.Infof("[SESSION] Reconnect attempt %d/%d", attempt, s.opts.MaxReconnectAttempts)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		if err := s.chat.Destroy(s.ctx); err != nil {
			logrus.WithError(err).Warn("[SESSION] Failed to destroy chat session")
		}

		if s.opts.ReconnectCooldown > 0 {
			timer := time.NewTimer(s.opts.ReconnectCooldown)
			select {
			case <-timer.C:
			case <-s.ctx.Done():
				timer.Stop()
				s.finishRestart()
				return
			}
		}

		s.mu.Lock()
		s.reinitializing = true
		s.mu.Unlock()

		err := s.chat.Initialize(s.ctx)
		pending := s.finishRestart()
		if err != nil {
			logrus.WithError(err).Error("[SESSION] Re-initialization failed")
			s.restart("re-initialization failed: " + err.Error())
			return
		}
		if pending != "" {
			s.restart(pending)
			return
		}
		s.armInitTimer()
	}()
}

// finishRestart clears the restart flags and returns the reason of a failure
// reported while Initialize was running, if any.
func (s *serviceSession) finishRestart() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restarting = false
	s.reinitializing = false
	pending := s.pendingRestart
	s.pendingRestart = ""
	return pending
}

// armInitTimer treats a session that neither shows a QR nor becomes ready in
// time as disconnected.
func (s *serviceSession) armInitTimer() {
	if s.opts.InitTimeout <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.fatal || s.state == domainSession.StateReady || s.state == domainSession.StateAwaitingQR {
		return
	}
	s.stopInitTimerLocked()
	s.initTimer = time.AfterFunc(s.opts.InitTimeout, func() {
		s.mu.Lock()
		stuck := !s.closed && s.state != domainSession.StateReady && s.state != domainSession.StateAwaitingQR
		s.mu.Unlock()
		if stuck {
			s.HandleDisconnected("initialization timed out")
		}
	})
}

func (s *serviceSession) stopInitTimerLocked() {
	if s.initTimer != nil {
		s.initTimer.Stop()
		s.initTimer = nil
	}
}

func (s *serviceSession) startKeepAliveLocked() {
	s.stopKeepAliveLocked()
	ctx, cancel := context.WithCancel(s.ctx)
	s.stopKeep = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.opts.KeepAliveInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !s.IsReady() {
					continue
				}
				logrus.Debug("[SESSION] Keep-alive: sending presence")
				if err := s.chat.SendPresenceAvailable(ctx); err != nil {
					logrus.WithError(err).Warn("[SESSION] Keep-alive failed")
				}
			}
		}
	}()
}

func (s *serviceSession) stopKeepAliveLocked() {
	if s.stopKeep != nil {
		s.stopKeep()
		s.stopKeep = nil
	}
}

// SafeSend queues the message while the session is not ready. Once ready it
// delivers immediately; a failed delivery is logged and dropped, and the
// DeliveryFailure is returned for bookkeeping only.
func (s *serviceSession) SafeSend(ctx context.Context, destination string, payload domainSession.Payload, opts domainSession.SendOptions) error {
	msg := domainSession.OutboundMessage{Destination: destination, Payload: payload, Options: opts}

	s.sendMu.RLock()
	defer s.sendMu.RUnlock()

	s.mu.Lock()
	if s.state != domainSession.StateReady {
		s.enqueueLocked(msg)
		queued := len(s.queue)
		s.mu.Unlock()
		logrus.Warnf("[SESSION] Session not ready, queued message for %s (%d pending)", destination, queued)
		return nil
	}
	s.mu.Unlock()

	return s.deliverWithContext(ctx, msg)
}

func (s *serviceSession) enqueueLocked(msg domainSession.OutboundMessage) {
	if len(s.queue) >= s.opts.QueueCapacity {
		dropped := s.queue[0]
		s.queue = s.queue[1:]
		logrus.Warnf("[SESSION] Pending queue full (%d), dropping oldest message for %s", s.opts.QueueCapacity, dropped.Destination)
	}
	s.queue = append(s.queue, msg)
}

func (s *serviceSession) deliver(msg domainSession.OutboundMessage) error {
	return s.deliverWithContext(s.ctx, msg)
}

func (s *serviceSession) deliverWithContext(ctx context.Context, msg domainSession.OutboundMessage) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.DeliveryTimeout)
	defer cancel()

	if err := s.chat.SendMessage(ctx, msg.Destination, msg.Payload, msg.Options); err != nil {
		failure := &pkgError.DeliveryFailureError{Destination: msg.Destination, Cause: err}
		logrus.WithError(err).Errorf("[SESSION] Failed to send message to %s, dropping it", msg.Destination)
		return failure
	}
	logrus.Debugf("[SESSION] Message sent to %s", msg.Destination)
	return nil
}

func (s *serviceSession) State() domainSession.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *serviceSession) IsReady() bool {
	return s.State() == domainSession.StateReady
}

func (s *serviceSession) CurrentQR() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.qr
}

func (s *serviceSession) Snapshot() domainSession.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := domainSession.Snapshot{
		State:             s.state,
		Ready:             s.state == domainSession.StateReady,
		HasQR:             s.qr != "",
		ReconnectAttempts: s.attempts,
		QueuedMessages:    len(s.queue),
	}
	if snap.Ready {
		since := s.readySince
		snap.ReadySince = &since
	}
	return snap
}

func (s *serviceSession) Fatal() <-chan error {
	return s.fatalCh
}

// Shutdown stops the keep-alive and any pending restart, then destroys the
// transport session.
func (s *serviceSession) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.stopKeepAliveLocked()
	s.stopInitTimerLocked()
	if s.state == domainSession.StateReady {
		s.state = domainSession.StateDisconnected
	}
	pending := len(s.queue)
	s.mu.Unlock()

	if pending > 0 {
		logrus.Warnf("[SESSION] Shutting down with %d undelivered message(s)", pending)
	}

	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		logrus.Warn("[SESSION] Timed out waiting for background tasks")
	}

	return s.chat.Destroy(ctx)
}

func displayName(name string) string {
	if name == "" {
		return "N/A"
	}
	return name
}
