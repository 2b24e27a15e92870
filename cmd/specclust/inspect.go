package main

import (
	"github.com/matsen/specclust/internal/spectrum"
	"github.com/spf13/cobra"
)

var (
	inspectInput inputFlags
	inspectPeaks bool
	inspectLimit int
)

func init() {
	inspectCmd.Flags().BoolVar(&inspectPeaks, "peaks", false, "Include every peak")
	inspectCmd.Flags().IntVar(&inspectLimit, "limit", DefaultListLimit, "Maximum spectra to show (0 for all)")
	inspectInput.register(inspectCmd, false)
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print parsed spectra",
	Long: `Parse MGF files and print each spectrum: title, precursor mass,
retention time and peak count. Peaks are shown sorted by m/z, as the
clustering sees them.`,
	RunE: runInspect,
}

// InspectResponse is the JSON output of the inspect command.
type InspectResponse struct {
	Total      int                 `json:"total"`
	TotalPeaks int                 `json:"total_peaks"`
	Spectra    []InspectedSpectrum `json:"spectra"`
}

// InspectedSpectrum is one spectrum in inspect output.
type InspectedSpectrum struct {
	Index         int             `json:"index"`
	Title         string          `json:"title"`
	PrecursorMass float64         `json:"pepmass"`
	RetentionTime float64         `json:"rt_seconds"`
	NumPeaks      int             `json:"num_peaks"`
	Peaks         []spectrum.Peak `json:"peaks,omitempty"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	if err := requireFiles(cmd, inspectInput.files); err != nil {
		return err
	}
	st := mustLoadStore(cmd, inspectInput.files).store

	n := st.Len()
	if inspectLimit > 0 && inspectLimit < n {
		n = inspectLimit
	}

	if humanOutput {
		for i := 0; i < n; i++ {
			outputHuman("[%d]\n%s\n", i, st.At(i).Describe(inspectPeaks))
		}
		if n < st.Len() {
			outputHuman("... %d more spectra (use --limit 0 to show all)\n", st.Len()-n)
		}
		outputHuman("%d spectra, %d peaks\n", st.Len(), st.TotalPeaks())
		return nil
	}

	resp := InspectResponse{
		Total:      st.Len(),
		TotalPeaks: st.TotalPeaks(),
		Spectra:    make([]InspectedSpectrum, n),
	}
	for i := 0; i < n; i++ {
		s := st.At(i)
		resp.Spectra[i] = InspectedSpectrum{
			Index:         i,
			Title:         s.Title,
			PrecursorMass: s.PrecursorMass,
			RetentionTime: s.RetentionTime,
			NumPeaks:      s.NumPeaks(),
		}
		if inspectPeaks {
			resp.Spectra[i].Peaks = s.Peaks
		}
	}
	return outputJSON(resp)
}
