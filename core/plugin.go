package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
)

type activityResultFunc func(result ActivityResult) bool

func (f activityResultFunc) OnActivityResult(result ActivityResult) bool { return f(result) }

// Plugin binds the method channel to the native SDKs. One CardEntryModule
// and one GooglePayModule exist while an activity is attached.
type Plugin struct {
	config          Config
	sdk             SDK
	ui              UIThread
	logger          Logger
	metricsRecorder MetricsRecorder
	errorMapper     ErrorMapper

	mu        sync.RWMutex
	channel   MethodChannel
	binding   ActivityBinding
	cardEntry *CardEntryModule
	googlePay *GooglePayModule

	routes *xsync.Map[int, ActivityResultListener]
}

func NewPlugin(cfg Config, opts ...Option) (*Plugin, error) {
	builder := defaultPluginBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = MapError
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.ui == nil {
		return nil, mapBuildError(builder.errorMapper, errors.New("core: ui thread is required"))
	}
	if builder.sdk.CardEntry == nil || builder.sdk.BuyerVerification == nil {
		return nil, mapBuildError(builder.errorMapper, errors.New("core: card entry and buyer verification sdks are required"))
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	return &Plugin{
		config:          finalConfig,
		sdk:             builder.sdk,
		ui:              builder.ui,
		logger:          resolveLogger("payments", builder.loggerProvider, builder.logger),
		metricsRecorder: builder.metricsRecorder,
		errorMapper:     builder.errorMapper,
		routes:          xsync.NewMap[int, ActivityResultListener](),
	}, nil
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	if mapped := mapper(err); mapped != nil {
		return mapped
	}
	return err
}

func (p *Plugin) Config() Config {
	return p.config
}

func (p *Plugin) UIThread() UIThread {
	return p.ui
}

// AttachEngine binds the outbound method channel.
func (p *Plugin) AttachEngine(channel MethodChannel) error {
	if channel == nil {
		return badInputError("core: method channel is required")
	}
	p.mu.Lock()
	p.channel = channel
	p.mu.Unlock()
	p.logger.Info("payments plugin attached to engine", "channel", p.config.ChannelName)
	return nil
}

func (p *Plugin) DetachEngine() {
	p.mu.Lock()
	p.detachActivityLocked()
	p.channel = nil
	p.mu.Unlock()
	p.logger.Info("payments plugin detached from engine", "channel", p.config.ChannelName)
}

// AttachActivity builds fresh modules for binding and routes its activity
// results. A previously attached activity is detached first.
func (p *Plugin) AttachActivity(binding ActivityBinding) error {
	if binding == nil {
		return badInputError("core: activity binding is required")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel == nil {
		return notAttachedError("attach_activity")
	}
	p.detachActivityLocked()

	activity := binding.Activity()
	cardEntry, err := NewCardEntryModule(activity, p.sdk, p.ui, p.channel, p.logger)
	if err != nil {
		return err
	}
	googlePay, err := NewGooglePayModule(
		activity,
		p.sdk.GooglePay,
		p.ui,
		p.channel,
		p.config.GooglePay,
		p.logger,
	)
	if err != nil {
		cardEntry.Close()
		return err
	}

	routes := map[int]ActivityResultListener{
		p.sdk.CardEntry.RequestCode():         activityResultFunc(cardEntry.OnCardEntryResult),
		p.sdk.BuyerVerification.RequestCode(): activityResultFunc(cardEntry.OnBuyerVerificationResult),
		googlePay.RequestCode():               activityResultFunc(googlePay.OnActivityResult),
	}
	if len(routes) != 3 {
		cardEntry.Close()
		googlePay.Close()
		return badInputError(fmt.Sprintf(
			"core: activity request codes must be distinct (card entry %d, verification %d, google pay %d)",
			p.sdk.CardEntry.RequestCode(), p.sdk.BuyerVerification.RequestCode(), googlePay.RequestCode(),
		))
	}
	for code, listener := range routes {
		p.routes.Store(code, listener)
	}

	p.binding = binding
	p.cardEntry = cardEntry
	p.googlePay = googlePay
	binding.AddActivityResultListener(p)
	p.logger.Info("payments plugin attached to activity")
	return nil
}

func (p *Plugin) ReattachActivity(binding ActivityBinding) error {
	return p.AttachActivity(binding)
}

func (p *Plugin) DetachActivity() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.detachActivityLocked()
}

func (p *Plugin) detachActivityLocked() {
	if p.binding != nil {
		p.binding.RemoveActivityResultListener(p)
		p.logger.Info("payments plugin detached from activity")
	}
	if p.cardEntry != nil {
		p.cardEntry.Close()
	}
	if p.googlePay != nil {
		p.googlePay.Close()
	}
	p.routes.Range(func(code int, _ ActivityResultListener) bool {
		p.routes.Delete(code)
		return true
	})
	p.binding = nil
	p.cardEntry = nil
	p.googlePay = nil
}

// OnActivityResult routes a result to the module that owns its request
// code. Results for unknown request codes are left for other listeners.
func (p *Plugin) OnActivityResult(result ActivityResult) bool {
	listener, ok := p.routes.Load(result.RequestCode)
	if !ok {
		return false
	}
	return listener.OnActivityResult(result)
}

func (p *Plugin) CardEntry() *CardEntryModule {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cardEntry
}

func (p *Plugin) GooglePay() *GooglePayModule {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.googlePay
}

func (p *Plugin) cardEntryModule(operation string) (*CardEntryModule, error) {
	module := p.CardEntry()
	if module == nil {
		return nil, notAttachedError(operation)
	}
	return module, nil
}

func (p *Plugin) googlePayModule(operation string) (*GooglePayModule, error) {
	module := p.GooglePay()
	if module == nil {
		return nil, notAttachedError(operation)
	}
	return module, nil
}

func (p *Plugin) SetApplicationID(ctx context.Context, applicationID string) (err error) {
	startedAt := time.Now()
	defer func() { p.observeOperation(ctx, startedAt, "set_application_id", err, nil) }()
	applicationID = strings.TrimSpace(applicationID)
	if applicationID == "" {
		return badInputError("core: application id is required")
	}
	if p.sdk.Payments == nil {
		return sdkOperationError(errors.New("payments sdk is not available"), "core: set application id failed")
	}
	p.sdk.Payments.SetApplicationID(applicationID)
	return nil
}

func (p *Plugin) StartCardEntryFlow(ctx context.Context, collectPostalCode bool) (err error) {
	startedAt := time.Now()
	defer func() {
		p.observeOperation(ctx, startedAt, "start_card_entry_flow", err, map[string]any{
			"collect_postal_code": collectPostalCode,
		})
	}()
	module, err := p.cardEntryModule("start_card_entry_flow")
	if err != nil {
		return err
	}
	return module.StartCardEntryFlow(ctx, collectPostalCode)
}

func (p *Plugin) StartGiftCardEntryFlow(ctx context.Context) (err error) {
	startedAt := time.Now()
	defer func() { p.observeOperation(ctx, startedAt, "start_gift_card_entry_flow", err, nil) }()
	module, err := p.cardEntryModule("start_gift_card_entry_flow")
	if err != nil {
		return err
	}
	return module.StartGiftCardEntryFlow(ctx)
}

func (p *Plugin) CompleteCardEntry(ctx context.Context) (err error) {
	startedAt := time.Now()
	fields := map[string]any{}
	defer func() { p.observeOperation(ctx, startedAt, "complete_card_entry", err, fields) }()
	module, err := p.cardEntryModule("complete_card_entry")
	if err != nil {
		return err
	}
	fields["cycle_id"] = module.Exchange().CurrentCycle()
	return module.CompleteCardEntry(ctx)
}

func (p *Plugin) ShowCardNonceProcessingError(ctx context.Context, message string) (err error) {
	startedAt := time.Now()
	fields := map[string]any{}
	defer func() { p.observeOperation(ctx, startedAt, "show_card_nonce_processing_error", err, fields) }()
	module, err := p.cardEntryModule("show_card_nonce_processing_error")
	if err != nil {
		return err
	}
	fields["cycle_id"] = module.Exchange().CurrentCycle()
	return module.ShowCardNonceProcessingError(ctx, message)
}

func (p *Plugin) StartCardEntryFlowWithBuyerVerification(ctx context.Context, req VerificationRequest) (err error) {
	startedAt := time.Now()
	defer func() {
		p.observeOperation(ctx, startedAt, "start_card_entry_flow_with_buyer_verification", err, map[string]any{
			"location_id":  req.LocationID,
			"buyer_action": buyerActionName(req.BuyerAction),
		})
	}()
	module, err := p.cardEntryModule("start_card_entry_flow_with_buyer_verification")
	if err != nil {
		return err
	}
	return module.StartCardEntryFlowWithBuyerVerification(ctx, req)
}

func (p *Plugin) StartBuyerVerificationFlow(ctx context.Context, req VerificationRequest) (err error) {
	startedAt := time.Now()
	defer func() {
		p.observeOperation(ctx, startedAt, "start_buyer_verification_flow", err, map[string]any{
			"location_id":  req.LocationID,
			"buyer_action": buyerActionName(req.BuyerAction),
		})
	}()
	module, err := p.cardEntryModule("start_buyer_verification_flow")
	if err != nil {
		return err
	}
	return module.StartBuyerVerificationFlow(ctx, req)
}

func (p *Plugin) InitializeGooglePay(ctx context.Context, locationID string, environment GooglePayEnvironment) (err error) {
	startedAt := time.Now()
	defer func() {
		p.observeOperation(ctx, startedAt, "initialize_google_pay", err, map[string]any{
			"location_id": locationID,
			"environment": int(environment),
		})
	}()
	module, err := p.googlePayModule("initialize_google_pay")
	if err != nil {
		return err
	}
	return module.InitializeGooglePay(ctx, locationID, environment)
}

func (p *Plugin) CanUseGooglePay(ctx context.Context) (ready bool, err error) {
	startedAt := time.Now()
	defer func() {
		p.observeOperation(ctx, startedAt, "can_use_google_pay", err, map[string]any{"ready": ready})
	}()
	module, err := p.googlePayModule("can_use_google_pay")
	if err != nil {
		return false, err
	}
	return module.CanUseGooglePay(ctx)
}

func (p *Plugin) RequestGooglePayNonce(ctx context.Context, req GooglePayNonceRequest) (err error) {
	startedAt := time.Now()
	defer func() {
		p.observeOperation(ctx, startedAt, "request_google_pay_nonce", err, map[string]any{
			"currency_code": req.CurrencyCode,
			"price_status":  int(req.PriceStatus),
		})
	}()
	module, err := p.googlePayModule("request_google_pay_nonce")
	if err != nil {
		return err
	}
	return module.RequestGooglePayNonce(ctx, req)
}

func buyerActionName(action BuyerAction) string {
	if action == nil {
		return ""
	}
	return action.Name()
}

var _ ActivityResultListener = (*Plugin)(nil)
