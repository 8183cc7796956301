package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"text/template"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"oxyspa/b2b/internal/config"
	"oxyspa/b2b/internal/email"
	"oxyspa/b2b/internal/models"
)

// TaskType defines the type of a background task.
const (
	TypeLeadNotify = "lead:notify"
)

const notifyQueue = "default"

// --- Task Client (Enqueuing tasks) ---

func redisOpt(rdb *redis.Client) asynq.RedisClientOpt {
	opts := rdb.Options()
	return asynq.RedisClientOpt{
		Network:   opts.Network,
		Addr:      opts.Addr,
		Username:  opts.Username,
		Password:  opts.Password,
		DB:        opts.DB,
		TLSConfig: opts.TLSConfig,
	}
}

// NewClient creates an asynq client on the same Redis as rdb.
func NewClient(rdb *redis.Client) *asynq.Client {
	return asynq.NewClient(redisOpt(rdb))
}

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// LeadNotifyPayload is the body of a TypeLeadNotify task.
type LeadNotifyPayload struct {
	LeadID string      `json:"lead_id"`
	Lead   models.Lead `json:"lead"`
}

// LeadNotifier queues a notification for every stored lead.
type LeadNotifier struct {
	client Enqueuer
}

func NewLeadNotifier(client Enqueuer) *LeadNotifier {
	return &LeadNotifier{client: client}
}

// NotifyLeadCreated enqueues a TypeLeadNotify task for the lead.
func (n *LeadNotifier) NotifyLeadCreated(ctx context.Context, leadID string, lead models.Lead) error {
	payload, err := json.Marshal(LeadNotifyPayload{LeadID: leadID, Lead: lead})
	if err != nil {
		return fmt.Errorf("failed to marshal lead notify payload: %w", err)
	}
	task := asynq.NewTask(TypeLeadNotify, payload)
	info, err := n.client.EnqueueContext(ctx, task, asynq.Queue(notifyQueue), asynq.Timeout(time.Minute))
	if err != nil {
		return fmt.Errorf("failed to enqueue %s: %w", TypeLeadNotify, err)
	}
	log.Printf("Enqueued %s task %s for lead %s", TypeLeadNotify, info.ID, leadID)
	return nil
}

// --- Task Server (Processing tasks) ---

// TaskProcessor holds dependencies needed by task handlers.
type TaskProcessor struct {
	cfg         *config.Config
	emailSender email.Sender
}

func NewTaskProcessor(cfg *config.Config, emailSender email.Sender) *TaskProcessor {
	return &TaskProcessor{cfg: cfg, emailSender: emailSender}
}

// SetupServer configures an Asynq server and the mux routing tasks to processor.
func SetupServer(rdb *redis.Client, processor *TaskProcessor) (*asynq.Server, *asynq.ServeMux) {
	srv := asynq.NewServer(
		redisOpt(rdb),
		asynq.Config{
			Concurrency: 4,
			Queues: map[string]int{
				notifyQueue: 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Printf("[Asynq Error] Task Type: %s, Error: %v", task.Type(), err)
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeLeadNotify, processor.HandleLeadNotifyTask)
	return srv, mux
}

// StartWorker starts processing in the background. Stop it with Shutdown.
func StartWorker(rdb *redis.Client, processor *TaskProcessor) (*asynq.Server, error) {
	srv, mux := SetupServer(rdb, processor)
	if err := srv.Start(mux); err != nil {
		return nil, fmt.Errorf("failed to start task server: %w", err)
	}
	return srv, nil
}

// --- Task Handlers ---

var leadSummary = template.Must(template.New("lead").Parse(`A new B2B lead was captured.

Lead ID:        {{.LeadID}}
Company:        {{.Lead.CompanyName}}
Contact:        {{.Lead.ContactName}}
Email:          {{.Lead.Email}}
{{- with .Lead.Phone}}
Phone:          {{.}}{{end}}
{{- with .Lead.Country}}
Country:        {{.}}{{end}}
{{- with .Lead.City}}
City:           {{.}}{{end}}
{{- with .Lead.SpaCount}}
Spas managed:   {{.}}{{end}}
{{- with .Lead.CurrentChemicals}}
Chemicals:      {{.}}{{end}}
{{- with .Lead.MonthlyChemicalCost}}
Monthly spend:  {{.}} USD{{end}}
{{- with .Lead.PainPoints}}

Pain points:
{{.}}{{end}}
{{- with .Lead.Message}}

Message:
{{.}}{{end}}

Consent: {{.Lead.Consent}}
Source:  {{.Lead.Source}}
`))

// RenderLeadSummary renders the plain-text notification body.
func RenderLeadSummary(payload LeadNotifyPayload) (string, error) {
	var buf bytes.Buffer
	if err := leadSummary.Execute(&buf, payload); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// HandleLeadNotifyTask emails the configured recipients about a new lead.
func (p *TaskProcessor) HandleLeadNotifyTask(ctx context.Context, t *asynq.Task) error {
	var payload LeadNotifyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal lead notify payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.LeadID == "" {
		return fmt.Errorf("lead notify payload has no lead id: %w", asynq.SkipRetry)
	}

	if len(p.cfg.LeadNotifyRecipients) == 0 {
		log.Printf("No LEAD_NOTIFY_RECIPIENTS configured, skipping notification for lead %s", payload.LeadID)
		return nil
	}

	body, err := RenderLeadSummary(payload)
	if err != nil {
		return fmt.Errorf("failed to render lead summary: %v: %w", err, asynq.SkipRetry)
	}
	subject := fmt.Sprintf("New lead: %s", payload.Lead.CompanyName)

	if err := p.emailSender.Send(ctx, p.cfg.LeadNotifyRecipients, subject, body); err != nil {
		return fmt.Errorf("failed to send lead notification: %w", err)
	}
	log.Printf("Lead notification sent for lead %s", payload.LeadID)
	return nil
}
