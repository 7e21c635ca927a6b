package shell

import (
	"context"
	"strings"
	"time"

	"cybercase/internal/missionapi"
)

type Tone string

const (
	ToneSuccess Tone = "lightgreen"
	ToneWarning Tone = "yellow"

	EmptyAnswerMessage     = "Please enter a name."
	ValidationErrorMessage = "Validation error."
	defaultCorrectMessage  = "Correct!"
	defaultWrongMessage    = "Incorrect. Try again."
	defaultRedirect        = "/mission_complete"
)

type Verifier interface {
	Validate(ctx context.Context, path, answer string) (missionapi.Verdict, error)
}

type ValidatorConfig struct {
	Path          string
	ResultField   string
	RedirectDelay time.Duration
	// DefaultRedirect is used when the response carries no redirect field.
	DefaultRedirect string
	// UseServerMessage shows the response's message and redirect fields when
	// present instead of the fixed texts.
	UseServerMessage bool
	CorrectMessage   string
	WrongMessage     string
}

// MissionValidator mirrors the mission page's name check on /validate.
func MissionValidator() ValidatorConfig {
	return ValidatorConfig{
		Path:             "/validate",
		ResultField:      "result",
		RedirectDelay:    600 * time.Millisecond,
		DefaultRedirect:  defaultRedirect,
		UseServerMessage: true,
		CorrectMessage:   defaultCorrectMessage,
		WrongMessage:     defaultWrongMessage,
	}
}

// CaseValidator mirrors the case file's answer form on /validate_answer.
func CaseValidator() ValidatorConfig {
	return ValidatorConfig{
		Path:            "/validate_answer",
		ResultField:     "status",
		RedirectDelay:   1500 * time.Millisecond,
		DefaultRedirect: defaultRedirect,
		CorrectMessage:  "Correct! Redirecting...",
		WrongMessage:    defaultWrongMessage,
	}
}

type Feedback struct {
	Text     string
	Tone     Tone
	Correct  bool
	Redirect string
	Delay    time.Duration
}

type Validator struct {
	cfg       ValidatorConfig
	verifier  Verifier
	navigate  func(target string)
	afterFunc func(time.Duration, func()) *time.Timer
}

// NewValidator builds a validator. navigate is invoked once the redirect
// delay has elapsed after a correct answer; it may be nil.
func NewValidator(cfg ValidatorConfig, verifier Verifier, navigate func(target string)) *Validator {
	if cfg.ResultField == "" {
		cfg.ResultField = "result"
	}
	if cfg.DefaultRedirect == "" {
		cfg.DefaultRedirect = defaultRedirect
	}
	if cfg.CorrectMessage == "" {
		cfg.CorrectMessage = defaultCorrectMessage
	}
	if cfg.WrongMessage == "" {
		cfg.WrongMessage = defaultWrongMessage
	}
	return &Validator{
		cfg:       cfg,
		verifier:  verifier,
		navigate:  navigate,
		afterFunc: time.AfterFunc,
	}
}

func (v *Validator) Submit(ctx context.Context, input string) Feedback {
	answer := strings.TrimSpace(input)
	if answer == "" {
		return Feedback{Text: EmptyAnswerMessage, Tone: ToneWarning}
	}

	verdict, err := v.verifier.Validate(ctx, v.cfg.Path, answer)
	if err != nil {
		return Feedback{Text: ValidationErrorMessage, Tone: ToneWarning}
	}

	message := ""
	if v.cfg.UseServerMessage {
		message = verdict.Text("message")
	}

	if verdict.Text(v.cfg.ResultField) != "correct" {
		if message == "" {
			message = v.cfg.WrongMessage
		}
		return Feedback{Text: message, Tone: ToneWarning}
	}

	if message == "" {
		message = v.cfg.CorrectMessage
	}
	target := ""
	if v.cfg.UseServerMessage {
		target = verdict.Text("redirect")
	}
	if target == "" {
		target = v.cfg.DefaultRedirect
	}

	if v.navigate != nil {
		navigate := v.navigate
		v.afterFunc(v.cfg.RedirectDelay, func() { navigate(target) })
	}

	return Feedback{
		Text:     message,
		Tone:     ToneSuccess,
		Correct:  true,
		Redirect: target,
		Delay:    v.cfg.RedirectDelay,
	}
}
