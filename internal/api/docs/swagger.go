package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// ScoresData mirrors the composite non-verbal scores; any score may be null
type ScoresData struct {
	EyeContact       *float64 `json:"eye_contact" example:"82.5"`
	FacialExpression *float64 `json:"facial_expression" example:"74.1"`
	Posture          *float64 `json:"posture" example:"90"`
	Stability        *float64 `json:"stability" example:"60"`
	Final            *float64 `json:"final_non_verbal_score" example:"76.65"`
}

// EnvelopeResponse is the per-frame analysis result
type EnvelopeResponse struct {
	Status             string     `json:"session_status" example:"active"`
	Scores             ScoresData `json:"non_verbal_scores"`
	Insights           []string   `json:"insights" example:"Posture needs improvement"`
	Reason             string     `json:"reason,omitempty" example:"no_face_detected"`
	CancellationReason string     `json:"cancellation_reason,omitempty" example:"multiple_faces_detected"`
	SkipReason         string     `json:"skip_reason,omitempty" example:"blink_detected"`
}

// SummaryResponse describes a live session
type SummaryResponse struct {
	SessionID            string  `json:"session_id" example:"interview-42"`
	DurationSeconds      float64 `json:"duration_seconds" example:"312.4"`
	TotalFramesProcessed int     `json:"total_frames_processed" example:"1520"`
	EyeContactFrames     int     `json:"eye_contact_frames" example:"1103"`
	IsCancelled          bool    `json:"is_cancelled" example:"false"`
	CancellationReason   *string `json:"cancellation_reason"`
}

// ReportResponse is the final non-verbal report of a session
type ReportResponse struct {
	ID             string     `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	SessionID      string     `json:"session_id" example:"interview-42"`
	TotalFrames    int        `json:"total_frames" example:"1600"`
	AnalyzedFrames int        `json:"analyzed_frames" example:"1488"`
	Scores         ScoresData `json:"non_verbal_scores"`
	PassStatus     string     `json:"pass_status" example:"pass"`
	PassThreshold  float64    `json:"pass_threshold" example:"60"`
	CreatedAt      string     `json:"created_at" example:"2024-01-01T00:00:00Z"`
}

// AnswerResponse is a stored answer transcript
type AnswerResponse struct {
	SessionID       string `json:"session_id" example:"interview-42"`
	QuestionID      string `json:"question_id" example:"q1"`
	RawTranscript   string `json:"raw_transcript" example:"um I led the uh migration"`
	CleanTranscript string `json:"clean_transcript" example:"I led the migration"`
	WordCount       int    `json:"word_count" example:"4"`
}

// SpeechMetricsData holds the delivery metrics of a session
type SpeechMetricsData struct {
	WordCount       int     `json:"word_count" example:"412"`
	DurationSeconds float64 `json:"duration" example:"181.25"`
	AvgWPM          float64 `json:"avg_wpm" example:"136.4"`
	FillerCount     int     `json:"filler_count" example:"9"`
	FillerRate      float64 `json:"filler_rate" example:"0.02"`
	PauseCount      int     `json:"pause_count" example:"31"`
	PauseRatio      float64 `json:"pause_ratio" example:"0.18"`
	Energy          float64 `json:"energy" example:"0.0712"`
	PitchMean       float64 `json:"pitch_mean" example:"148.3"`
	PitchVariation  float64 `json:"pitch_variation" example:"0.21"`
}

// SpeechReportResponse is the delivery report of a session
type SpeechReportResponse struct {
	ID              string            `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	SessionID       string            `json:"session_id" example:"interview-42"`
	Metrics         SpeechMetricsData `json:"metrics"`
	ConfidenceScore float64           `json:"confidence_score" example:"0.31"`
	CreatedAt       string            `json:"created_at" example:"2024-01-01T00:00:00Z"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"Request validation failed"`
}

// EmptyResponse represents no content response (204)
type EmptyResponse struct{}

var internalError = response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error")

func sessionParam() *parameter.Parameter {
	return parameter.StrParam("session_id", parameter.Path, parameter.WithDescription("Interview session identifier"))
}

func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Poise Interview Analysis API",
		Version:     "v1.0.0",
		Description: "Live non-verbal and speech delivery analysis for recorded interviews. Frames and audio stream over the /v1/ws endpoints.",
		Host:        "localhost:3000",
		Path:        "/v1",
	})

	endpoints := []*endpoint.EndPoint{
		// Sessions

		endpoint.New(
			endpoint.POST,
			"/sessions/{session_id}/frames",
			endpoint.WithTags("Sessions"),
			endpoint.WithSummary("Analyze one frame"),
			endpoint.WithDescription("Runs an uploaded JPEG, PNG or WebP image (form field \"image\") through the session pipeline. The first frame creates the session."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(sessionParam()),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EnvelopeResponse{}, "200", "Frame analyzed"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "image is required"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "INVALID_IMAGE", Message: "Invalid or corrupted image"}, "422", "Unprocessable Entity"),
				internalError,
			}),
		),

		endpoint.New(
			endpoint.GET,
			"/sessions/{session_id}/summary",
			endpoint.WithTags("Sessions"),
			endpoint.WithSummary("Live session summary"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(sessionParam()),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SummaryResponse{}, "200", "Summary"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "SESSION_NOT_FOUND", Message: "Session not found"}, "404", "Unknown or cancelled session"),
			}),
		),

		endpoint.New(
			endpoint.POST,
			"/sessions/{session_id}/analyze",
			endpoint.WithTags("Sessions"),
			endpoint.WithSummary("Report over the frames so far"),
			endpoint.WithDescription("Averages every fully scored frame without ending the session. Sessions pass at an average final score of 60."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(sessionParam()),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ReportResponse{}, "200", "Report"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "SESSION_NOT_FOUND", Message: "Session not found"}, "404", "Not Found"),
			}),
		),

		endpoint.New(
			endpoint.DELETE,
			"/sessions/{session_id}",
			endpoint.WithTags("Sessions"),
			endpoint.WithSummary("End a session"),
			endpoint.WithDescription("Finalizes and stores the report, then forgets the session. Answers 204 when no frames were observed."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(sessionParam()),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ReportResponse{}, "200", "Final report"),
				response.New(EmptyResponse{}, "204", "Nothing to report"),
			}),
			endpoint.WithErrors([]response.Response{internalError}),
		),

		endpoint.New(
			endpoint.GET,
			"/reports/{session_id}",
			endpoint.WithTags("Reports"),
			endpoint.WithSummary("Stored final report"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(sessionParam()),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ReportResponse{}, "200", "Report"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "REPORT_NOT_FOUND", Message: "Report not found"}, "404", "Not Found"),
				internalError,
			}),
		),

		// Speech

		endpoint.New(
			endpoint.POST,
			"/speech/answers",
			endpoint.WithTags("Speech"),
			endpoint.WithSummary("Submit an answer transcript"),
			endpoint.WithDescription("JSON body with session_id, question_id and transcript. Returns the transcript without filler words."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(AnswerResponse{}, "200", "Answer stored"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "BAD_REQUEST", Message: "Bad request"}, "400", "Malformed body"),
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Request validation failed"}, "422", "Missing ids"),
			}),
		),

		endpoint.New(
			endpoint.POST,
			"/speech/sessions/{session_id}/analyze",
			endpoint.WithTags("Speech"),
			endpoint.WithSummary("Score speech delivery"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(sessionParam()),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SpeechReportResponse{}, "200", "Speech report"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "SPEECH_SESSION_NOT_FOUND", Message: "Speech session not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "NO_SPEECH_CAPTURED", Message: "No speech captured for session"}, "422", "Unprocessable Entity"),
				internalError,
			}),
		),

		endpoint.New(
			endpoint.GET,
			"/speech/sessions/{session_id}/report",
			endpoint.WithTags("Speech"),
			endpoint.WithSummary("Stored speech report"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(sessionParam()),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SpeechReportResponse{}, "200", "Speech report"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "REPORT_NOT_FOUND", Message: "Report not found"}, "404", "Not Found"),
			}),
		),

		endpoint.New(
			endpoint.DELETE,
			"/speech/sessions/{session_id}",
			endpoint.WithTags("Speech"),
			endpoint.WithSummary("Discard captured speech"),
			endpoint.WithParams(sessionParam()),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmptyResponse{}, "204", "Discarded"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "SPEECH_SESSION_NOT_FOUND", Message: "Speech session not found"}, "404", "Not Found"),
			}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
