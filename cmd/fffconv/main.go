package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/djherbis/times"
	"github.com/dyuri/fffconv/internal/archive"
	"github.com/dyuri/fffconv/internal/binary"
	"github.com/dyuri/fffconv/internal/jpeg"
	"github.com/dyuri/fffconv/internal/model"
	"github.com/dyuri/fffconv/internal/radiometry"
	"github.com/dyuri/fffconv/internal/render"
	"github.com/dyuri/fffconv/internal/text"
	"github.com/dyuri/fffconv/pkg/fffconv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/image/tiff"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var log = logrus.New()

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fffconv",
	Short: "Inspect and convert FLIR thermal images",
	Long: `fffconv is a tool for working with FLIR FFF thermal images.

It reads plain FFF containers and radiometric JPEGs (optionally zstd, lz4
or xz compressed), converts raw sensor values to temperatures, renders
false-color pictures, and exports the raw data.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		quiet, _ := cmd.Flags().GetBool("quiet")
		setupLogging(verbose, quiet)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log decoding details")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Only log errors")
	rootCmd.PersistentFlags().String("charset", "utf-8", "Charset of text fields: utf-8, windows-1252, iso-8859-1")

	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(tempsCmd)
	rootCmd.AddCommand(histogramCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}

func setupLogging(verbose, quiet bool) {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	switch {
	case verbose:
		log.SetLevel(logrus.DebugLevel)
	case quiet:
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.WarnLevel)
	}
}

// addOverrideFlag registers --overrides, a property sheet applied to the
// decoded image.
func addOverrideFlag(fs *pflag.FlagSet) {
	fs.String("overrides", "", "Property sheet overriding decoded properties (e.g. emissivity)")
}

// loadImage decodes the input file and applies --overrides, if given.
func loadImage(cmd *cobra.Command, path string) (*model.ThermalImage, error) {
	charset, _ := cmd.Flags().GetString("charset")

	img, err := fffconv.DecodeFile(path,
		fffconv.WithLogger(log.WithField("file", filepath.Base(path))),
		fffconv.WithCharset(charset))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	overrides, _ := cmd.Flags().GetString("overrides")
	if overrides == "" {
		return img, nil
	}

	f, err := os.Open(overrides)
	if err != nil {
		return nil, fmt.Errorf("open overrides: %w", err)
	}
	defer f.Close()

	sheet, err := text.NewReader(f).Read()
	if err != nil {
		return nil, fmt.Errorf("parse overrides: %w", err)
	}
	log.WithField("count", len(sheet.Properties)).Debug("applying property overrides")
	return sheet.Apply(img), nil
}

// createOutput opens path for writing, or stdout for "" and "-".
func createOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// compressedOutput wraps out with codec c. Closing it closes both.
type compressedOutput struct {
	io.WriteCloser
	out io.Closer
}

func (c compressedOutput) Close() error {
	if err := c.WriteCloser.Close(); err != nil {
		c.out.Close()
		return err
	}
	return c.out.Close()
}

func createCompressedOutput(path string, c archive.Codec) (io.WriteCloser, error) {
	out, err := createOutput(path)
	if err != nil {
		return nil, err
	}
	if c == archive.None {
		return out, nil
	}
	w, err := archive.NewWriter(out, c)
	if err != nil {
		out.Close()
		return nil, err
	}
	return compressedOutput{WriteCloser: w, out: out}, nil
}

// outputName derives an output file name from the input: IR_0042.jpg
// becomes IR_0042<ext>.
func outputName(input, ext string) string {
	base := filepath.Base(input)
	for {
		e := filepath.Ext(base)
		if e == "" {
			break
		}
		base = strings.TrimSuffix(base, e)
	}
	return base + ext
}

// info command
var infoCmd = &cobra.Command{
	Use:   "info <input>",
	Short: "Display thermal image information",
	Long: `Display metadata, sample statistics and properties of a thermal image.

The property listing uses the same sheet format --overrides accepts, so
it can be saved, edited and fed back.`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	infoCmd.Flags().Bool("json", false, "Output as JSON")
	infoCmd.Flags().Bool("brief", false, "Show only summary")
	infoCmd.Flags().Bool("palette", false, "Include the embedded palette")
	addOverrideFlag(infoCmd.Flags())
}

type imageInfo struct {
	File       string              `json:"file"`
	FileSize   int64               `json:"fileSize"`
	Modified   time.Time           `json:"modified"`
	Created    *time.Time          `json:"created,omitempty"`
	Creator    string              `json:"creator"`
	Width      int                 `json:"width"`
	Height     int                 `json:"height"`
	Samples    int                 `json:"samples"`
	RawMin     uint16              `json:"rawMin"`
	RawMax     uint16              `json:"rawMax"`
	RawMedian  uint16              `json:"rawMedian"`
	TempMin    *float64            `json:"tempMin,omitempty"`
	TempMax    *float64            `json:"tempMax,omitempty"`
	Marks      []float64           `json:"percentileMarks,omitempty"`
	Palette    int                 `json:"paletteColors"`
	Properties map[string]any      `json:"properties"`
	Categories map[string][]string `json:"categories"`
}

func runInfo(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	jsonOutput, _ := cmd.Flags().GetBool("json")
	brief, _ := cmd.Flags().GetBool("brief")
	withPalette, _ := cmd.Flags().GetBool("palette")

	stat, err := os.Stat(inputPath)
	if err != nil {
		return fmt.Errorf("stat input file: %w", err)
	}

	img, err := loadImage(cmd, inputPath)
	if err != nil {
		return err
	}

	info, err := collectInfo(inputPath, stat.Size(), img)
	if err != nil {
		return err
	}

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(info)
	}

	if brief {
		fmt.Printf("%s: %s %dx%d raw=%d..%d%s\n",
			inputPath, info.Creator, info.Width, info.Height, info.RawMin, info.RawMax, tempRange(info))
		return nil
	}

	fmt.Printf("Thermal Image: %s\n", inputPath)
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println()

	fmt.Println("File:")
	fmt.Printf("  Size:             %s (%d bytes)\n", formatBytes(info.FileSize), info.FileSize)
	fmt.Printf("  Modified:         %s\n", info.Modified.Format(time.RFC3339))
	if info.Created != nil {
		fmt.Printf("  Created:          %s\n", info.Created.Format(time.RFC3339))
	}
	fmt.Println()

	fmt.Println("Image:")
	fmt.Printf("  Creator:          %s\n", info.Creator)
	fmt.Printf("  Size:             %dx%d (%d samples)\n", info.Width, info.Height, info.Samples)
	fmt.Printf("  Raw range:        %d..%d (median %d)\n", info.RawMin, info.RawMax, info.RawMedian)
	if info.TempMin != nil {
		fmt.Printf("  Temperature:      %.2f..%.2f °C\n", *info.TempMin, *info.TempMax)
	}
	if info.Marks != nil {
		fmt.Printf("  Deciles:          %s\n", formatMarks(info.Marks))
	}
	fmt.Printf("  Palette:          %d colors\n", info.Palette)
	fmt.Println()

	w := text.NewWriter(os.Stdout)
	w.Palette = withPalette
	return w.Write(img)
}

func collectInfo(path string, size int64, img *model.ThermalImage) (*imageInfo, error) {
	info := &imageInfo{
		File:       path,
		FileSize:   size,
		Creator:    img.Creator(),
		Width:      img.Width(),
		Height:     img.Height(),
		Samples:    img.Len(),
		Palette:    len(img.Palette()),
		Properties: make(map[string]any),
		Categories: make(map[string][]string),
	}

	ts, err := times.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat input file: %w", err)
	}
	info.Modified = ts.ModTime()
	if ts.HasBirthTime() {
		bt := ts.BirthTime()
		info.Created = &bt
	}

	for _, p := range img.Properties().All() {
		info.Properties[p.Name] = jsonValue(p.Value)
		info.Categories[p.Category] = append(info.Categories[p.Category], p.Name)
	}

	a, err := fffconv.Analyze(img)
	if err != nil {
		log.WithError(err).Warn("no statistics")
		return info, nil
	}
	info.RawMin, info.RawMax, info.RawMedian = a.Min(), a.Max(), a.PercentileValue(0.5)
	// Marks are NaN for a flat image
	if a.Min() != a.Max() {
		info.Marks = a.PercentileMarks(10)
	}

	conv, err := fffconv.NewConverter(img)
	if err != nil {
		log.WithError(err).Info("no temperatures")
		return info, nil
	}
	lo, hi := conv.Celsius(float64(a.Min())), conv.Celsius(float64(a.Max()))
	if !math.IsNaN(lo) && !math.IsNaN(hi) {
		info.TempMin, info.TempMax = &lo, &hi
	}
	return info, nil
}

func jsonValue(v model.Value) any {
	if n, ok := v.Int(); ok {
		return n
	}
	if f, ok := v.Float(); ok {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return v.String()
		}
		return f
	}
	return v.String()
}

// formatMarks prints percentile marks as positions within the raw range.
func formatMarks(marks []float64) string {
	parts := make([]string, len(marks))
	for i, m := range marks {
		parts[i] = strconv.FormatFloat(m, 'f', 2, 64)
	}
	return strings.Join(parts, " ")
}

func tempRange(info *imageInfo) string {
	if info.TempMin == nil {
		return ""
	}
	return fmt.Sprintf(" temp=%.1f..%.1f°C", *info.TempMin, *info.TempMax)
}

// render command
var renderCmd = &cobra.Command{
	Use:   "render <input>",
	Short: "Render a false-color picture",
	Long: `Render the raw data through a palette to PNG or XPM.

The range is chosen by percentiles of the raw values; samples outside it
get the over and under colors. Without --palette the embedded palette is
used.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

// renderFlags are the options shared by commands that map levels to colors.
type renderFlags struct {
	palette string
	over    render.Color
	under   render.Color
	min     float64
	max     float64
}

var renderOpts = renderFlags{over: 0x77ff0000, under: 0x770000ff, max: 1}

func addRenderFlags(fs *pflag.FlagSet, f *renderFlags) {
	fs.StringVarP(&f.palette, "palette", "p", "", "Palette: embedded, "+strings.Join(fffconv.Palettes(), ", "))
	fs.Var(&f.over, "over", "Color of samples above the range (#AARRGGBB)")
	fs.Var(&f.under, "under", "Color of samples below the range (#AARRGGBB)")
	fs.Float64Var(&f.min, "min", f.min, "Lower bound percentile (0..1)")
	fs.Float64Var(&f.max, "max", f.max, "Upper bound percentile (0..1)")
}

func (f *renderFlags) resolvePalette(img *model.ThermalImage) (render.Palette, error) {
	switch f.palette {
	case "", "embedded":
		p := render.EmbeddedPalette(img)
		if len(p) == 0 {
			log.Info("no embedded palette, using whitehot")
			p = render.WhiteHot
		}
		return p, nil
	default:
		p, ok := fffconv.LookupPalette(f.palette)
		if !ok {
			return nil, fmt.Errorf("unknown palette %q (available: embedded, %s)",
				f.palette, strings.Join(fffconv.Palettes(), ", "))
		}
		return p, nil
	}
}

func init() {
	renderCmd.Flags().StringP("output", "o", "", "Output file (default: <input>.png)")
	renderCmd.Flags().String("format", "png", "Output format: png, xpm")
	renderCmd.Flags().Int("colorbar", 0, "Append a palette strip of this height")
	addRenderFlags(renderCmd.Flags(), &renderOpts)
	addOverrideFlag(renderCmd.Flags())
}

func runRender(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	outputPath, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	colorbar, _ := cmd.Flags().GetInt("colorbar")

	if format != "png" && format != "xpm" {
		return fmt.Errorf("unknown format: %s", format)
	}
	if outputPath == "" {
		outputPath = outputName(inputPath, "."+format)
	}

	img, err := loadImage(cmd, inputPath)
	if err != nil {
		return err
	}
	a, err := fffconv.Analyze(img)
	if err != nil {
		return err
	}
	p, err := renderOpts.resolvePalette(img)
	if err != nil {
		return err
	}

	pixels := fffconv.Render(img, a, fffconv.RenderOptions{
		Palette:       p,
		Over:          renderOpts.over,
		Under:         renderOpts.under,
		MinPercentile: renderOpts.min,
		MaxPercentile: renderOpts.max,
	})

	w, h := img.Width(), img.Height()
	if w*h != len(pixels) {
		w, h = len(pixels), 1
	}
	if colorbar > 0 {
		pixels = append(pixels, render.Colorbar(p, w, colorbar)...)
		h += colorbar
	}
	picture := render.ToNRGBA(pixels, w, h)

	out, err := createOutput(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	switch format {
	case "xpm":
		err = text.WriteXPM(out, outputName(inputPath, ""), picture)
	default:
		err = png.Encode(out, picture)
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", format, err)
	}

	log.WithFields(logrus.Fields{"output": outputPath, "width": w, "height": h}).Info("rendered")
	return out.Close()
}

// temps command
var tempsCmd = &cobra.Command{
	Use:   "temps <input>",
	Short: "Write temperatures as CSV",
	Long: `Convert every raw sample to a temperature and write them as CSV,
one image row per line.

Samples the radiometric model cannot convert are written as NaN.`,
	Args: cobra.ExactArgs(1),
	RunE: runTemps,
}

var tempsUnit = radiometry.Celsius

func init() {
	tempsCmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
	tempsCmd.Flags().VarP(&tempsUnit, "unit", "u", "Temperature unit: C, F, K")
	tempsCmd.Flags().Int("precision", 2, "Digits after the decimal point")
	addOverrideFlag(tempsCmd.Flags())
}

func runTemps(cmd *cobra.Command, args []string) error {
	outputPath, _ := cmd.Flags().GetString("output")
	precision, _ := cmd.Flags().GetInt("precision")

	img, err := loadImage(cmd, args[0])
	if err != nil {
		return err
	}
	temps, err := fffconv.Temperatures(img, tempsUnit)
	if err != nil {
		return err
	}

	out, err := createOutput(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := writeCSV(out, temps, img.Width(), precision); err != nil {
		return err
	}
	return out.Close()
}

// writeCSV writes values as rows of width columns.
func writeCSV(w io.Writer, values []float64, width, precision int) error {
	if width <= 0 {
		width = len(values)
	}
	cw := csv.NewWriter(w)
	row := make([]string, 0, width)
	for i, v := range values {
		row = append(row, strconv.FormatFloat(v, 'f', precision, 64))
		if len(row) == width || i == len(values)-1 {
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
			row = row[:0]
		}
	}
	cw.Flush()
	return cw.Error()
}

// histogram command
var histogramCmd = &cobra.Command{
	Use:   "histogram <input>",
	Short: "Show the raw value distribution",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistogram,
}

func init() {
	histogramCmd.Flags().IntP("buckets", "b", 16, "Number of buckets")
	histogramCmd.Flags().Int("width", 50, "Width of the longest bar")
}

func runHistogram(cmd *cobra.Command, args []string) error {
	buckets, _ := cmd.Flags().GetInt("buckets")
	width, _ := cmd.Flags().GetInt("width")
	if buckets <= 0 {
		return fmt.Errorf("buckets must be positive, got %d", buckets)
	}

	img, err := loadImage(cmd, args[0])
	if err != nil {
		return err
	}
	a, err := fffconv.Analyze(img)
	if err != nil {
		return err
	}

	h := fffconv.NewHistogram(img, a, buckets)
	printHistogram(os.Stdout, h, a.Min(), a.Max(), width)
	return nil
}

func printHistogram(w io.Writer, h render.Histogram, min, max uint16, width int) {
	peak := h.Peak()
	n := len(h.Buckets)
	for i, count := range h.Buckets {
		// Bucket i holds the levels rounding to i/(n-1)
		lo := float64(min)
		if n > 1 {
			lo += float64(max-min) * float64(i) / float64(n-1)
		}
		bar := 0
		if peak > 0 {
			bar = count * width / peak
		}
		fmt.Fprintf(w, "%8.0f %8d %s\n", lo, count, strings.Repeat("#", bar))
	}
	if h.Under > 0 || h.Over > 0 {
		fmt.Fprintf(w, "under: %d, over: %d\n", h.Under, h.Over)
	}
}

// extract command
var extractCmd = &cobra.Command{
	Use:   "extract <input.jpg>",
	Short: "Extract the FFF container from a radiometric JPEG",
	Long: `Extract the FFF container carried in the APP1 segments of a FLIR
radiometric JPEG.

The extracted file can be processed by every other command.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

var extractCodec = archive.None

func init() {
	extractCmd.Flags().StringP("output", "o", "", "Output file (default: <input>.fff)")
	extractCmd.Flags().Var(&extractCodec, "compress", "Compression: "+strings.Join(archive.Codecs(), ", "))
}

func runExtract(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	outputPath, _ := cmd.Flags().GetString("output")

	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open input file: %w", err)
	}
	defer f.Close()

	in, codec, err := archive.Open(f)
	if err != nil {
		return err
	}
	defer in.Close()
	log.WithField("compress", codec).Debug("reading input")

	fff, err := jpeg.ExtractReader(in)
	if err != nil {
		return err
	}

	if outputPath == "" {
		outputPath = outputName(inputPath, ".fff"+extractCodec.Extension())
	}
	out, err := createCompressedOutput(outputPath, extractCodec)
	if err != nil {
		return err
	}
	if _, err := out.Write(fff); err != nil {
		out.Close()
		return fmt.Errorf("write output: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Extracted %s (%d bytes) to %s\n", formatBytes(int64(len(fff))), len(fff), outputPath)
	return nil
}

// export command
var exportCmd = &cobra.Command{
	Use:   "export <input>",
	Short: "Export raw data or properties",
	Long: `Export the decoded image in another format:

  tiff   16-bit grayscale TIFF of the raw values
  csv    raw values, one image row per line
  fff    FFF container (applies --overrides)
  sheet  property sheet

The output can be compressed with --compress.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var exportCodec = archive.None

func init() {
	exportCmd.Flags().StringP("output", "o", "", "Output file (default: <input>.<format>)")
	exportCmd.Flags().String("format", "tiff", "Output format: tiff, csv, fff, sheet")
	exportCmd.Flags().String("order", "be", "Raw sample byte order of fff output: be, le")
	exportCmd.Flags().Var(&exportCodec, "compress", "Compression: "+strings.Join(archive.Codecs(), ", "))
	addOverrideFlag(exportCmd.Flags())
}

func runExport(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	outputPath, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	order, _ := cmd.Flags().GetString("order")

	var ext string
	switch format {
	case "tiff":
		ext = ".tiff"
	case "csv":
		ext = ".csv"
	case "fff":
		ext = ".fff"
	case "sheet":
		ext = ".txt"
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	img, err := loadImage(cmd, inputPath)
	if err != nil {
		return err
	}

	if outputPath == "" {
		outputPath = outputName(inputPath, ext+exportCodec.Extension())
	}
	out, err := createCompressedOutput(outputPath, exportCodec)
	if err != nil {
		return err
	}

	switch format {
	case "tiff":
		err = tiff.Encode(out, rawImage(img), &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	case "csv":
		raw := img.RawValues()
		values := make([]float64, len(raw))
		for i, v := range raw {
			values[i] = float64(v)
		}
		err = writeCSV(out, values, img.Width(), 0)
	case "fff":
		charset, _ := cmd.Flags().GetString("charset")
		err = writeFFF(out, img, order, charset)
	case "sheet":
		w := text.NewWriter(out)
		w.Palette = true
		err = w.Write(img)
	}
	if err != nil {
		out.Close()
		return fmt.Errorf("export %s: %w", format, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("export %s: %w", format, err)
	}

	log.WithFields(logrus.Fields{"output": outputPath, "format": format, "compress": exportCodec}).Info("exported")
	return nil
}

// rawImage copies the raw samples into a 16-bit grayscale image.
func rawImage(img *model.ThermalImage) *image.Gray16 {
	w, h := img.Width(), img.Height()
	if w*h != img.Len() {
		w, h = img.Len(), 1
	}
	out := image.NewGray16(image.Rect(0, 0, w, h))
	for i := 0; i < img.Len(); i++ {
		v := img.Raw(i)
		out.Pix[i*2] = byte(v >> 8)
		out.Pix[i*2+1] = byte(v)
	}
	return out
}

// writeFFF encodes img with text fields in the named charset, the one the
// input was decoded with.
func writeFFF(w io.Writer, img *model.ThermalImage, order, charset string) error {
	textEnc, err := binary.Charset(charset)
	if err != nil {
		return err
	}
	enc := binary.NewWriter(w)
	enc.SetTextEncoding(textEnc)
	switch order {
	case "be":
		return enc.Write(img)
	case "le":
		if err := enc.SetRawOrder(binary.SubKindLittleEndian); err != nil {
			return err
		}
		return enc.Write(img)
	default:
		return fmt.Errorf("unknown byte order: %s", order)
	}
}

// version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fffconv version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
	},
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
