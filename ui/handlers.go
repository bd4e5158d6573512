package ui

import (
	"encoding/json"
	"net/http"

	"agrosim/domain/scenario"
	"agrosim/internal/features"
	"agrosim/internal/simulation"

	"github.com/gin-gonic/gin"
)

// StringList accepts either a JSON string or a list of strings. Mobile
// clients send single selections as bare strings.
type StringList []string

// UnmarshalJSON implements string-or-list decoding.
func (l *StringList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one == "" {
			*l = nil
		} else {
			*l = StringList{one}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = StringList(many)
	return nil
}

// FloatList accepts either a JSON number or a list of numbers.
type FloatList []float64

// UnmarshalJSON implements number-or-list decoding.
func (l *FloatList) UnmarshalJSON(data []byte) error {
	var one float64
	if err := json.Unmarshal(data, &one); err == nil {
		*l = FloatList{one}
		return nil
	}
	var many []float64
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = FloatList(many)
	return nil
}

// simulateRequest is the wire shape of POST /simulate. Every field is
// optional; missing dimensions expand to all catalog values.
type simulateRequest struct {
	District    string     `json:"district"`
	Crops       StringList `json:"crops"`
	Seasons     StringList `json:"seasons"`
	SoilTypes   StringList `json:"soil_types"`
	Irrigations StringList `json:"irrigations"`
	Areas       FloatList  `json:"areas"`
}

func (r simulateRequest) toEngine() simulation.Request {
	return simulation.Request{
		District:    r.District,
		Crops:       r.Crops,
		Seasons:     r.Seasons,
		SoilTypes:   r.SoilTypes,
		Irrigations: r.Irrigations,
		Areas:       r.Areas,
	}
}

// predictRequest is the wire shape of POST /predict-yield: one concrete
// scenario plus optional field-observed covariates.
type predictRequest struct {
	District   string  `json:"district"`
	Crop       string  `json:"crop"`
	Season     string  `json:"season"`
	SoilType   string  `json:"soil_type"`
	Irrigation string  `json:"irrigation"`
	Area       float64 `json:"area"`

	Temperature float64 `json:"temperature"`
	Rainfall    float64 `json:"rainfall"`
	Humidity    float64 `json:"humidity"`
	Nitrogen    float64 `json:"nitrogen"`
	Phosphorus  float64 `json:"phosphorus"`
	Potassium   float64 `json:"potassium"`
	PH          float64 `json:"ph"`
}

func (r predictRequest) covariates() features.Covariates {
	return features.Covariates{
		Temperature: r.Temperature,
		Rainfall:    r.Rainfall,
		Humidity:    r.Humidity,
		Nitrogen:    r.Nitrogen,
		Phosphorus:  r.Phosphorus,
		Potassium:   r.Potassium,
		PH:          r.PH,
	}
}

// handleOptions returns the valid option space per dimension.
func (s *Server) handleOptions(c *gin.Context) {
	c.JSON(http.StatusOK, s.service.Options())
}

// handleSimulate runs the full simulation pipeline. Malformed JSON is the
// only client error; everything past decoding resolves to an advisory,
// fallback at worst.
func (s *Server) handleSimulate(c *gin.Context) {
	var req simulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "request body does not parse",
			"detail":     err.Error(),
			"request_id": c.GetString(requestIDKey),
		})
		return
	}

	report := s.service.Simulate(c.Request.Context(), req.toEngine(), features.Covariates{})
	c.JSON(http.StatusOK, report)
}

// handlePredictYield predicts one concrete scenario, honoring any covariates
// the caller measured in the field.
func (s *Server) handlePredictYield(c *gin.Context) {
	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "request body does not parse",
			"detail":     err.Error(),
			"request_id": c.GetString(requestIDKey),
		})
		return
	}

	sc := scenario.Scenario{
		District:   req.District,
		Crop:       req.Crop,
		Season:     req.Season,
		SoilType:   req.SoilType,
		Irrigation: req.Irrigation,
		Area:       req.Area,
	}
	report := s.service.PredictOne(c.Request.Context(), sc, req.covariates())
	c.JSON(http.StatusOK, report)
}

// handleModelInfo reports the loaded model's metadata and quality metrics.
func (s *Server) handleModelInfo(c *gin.Context) {
	if s.bundle == nil {
		c.JSON(http.StatusOK, gin.H{
			"loaded": false,
			"mode":   "fallback-only",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"loaded":   true,
		"metadata": s.bundle.Metadata,
		"features": s.bundle.Encoder.FeatureNames(),
	})
}
