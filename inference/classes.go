package inference

// YOLOClasses are the 80 COCO class names in YOLOv8 output order.
var YOLOClasses = []string{
	"person", "bicycle", "car", "motorcycle", "airplane", "bus", "train", "truck", "boat",
	"traffic light", "fire hydrant", "stop sign", "parking meter", "bench", "bird", "cat", "dog", "horse",
	"sheep", "cow", "elephant", "bear", "zebra", "giraffe", "backpack", "umbrella", "handbag", "tie",
	"suitcase", "frisbee", "skis", "snowboard", "sports ball", "kite", "baseball bat", "baseball glove",
	"skateboard", "surfboard", "tennis racket", "bottle", "wine glass", "cup", "fork", "knife", "spoon",
	"bowl", "banana", "apple", "sandwich", "orange", "broccoli", "carrot", "hot dog", "pizza", "donut",
	"cake", "chair", "couch", "potted plant", "bed", "dining table", "toilet", "tv", "laptop", "mouse",
	"remote", "keyboard", "cell phone", "microwave", "oven", "toaster", "sink", "refrigerator", "book",
	"clock", "vase", "scissors", "teddy bear", "hair drier", "toothbrush",
}

// ClassName returns the COCO name for a class index, or "" when out of range.
func ClassName(id int) string {
	if id < 0 || id >= len(YOLOClasses) {
		return ""
	}
	return YOLOClasses[id]
}

// ClassIndex returns the index of a COCO class name, or -1.
func ClassIndex(name string) int {
	for i, c := range YOLOClasses {
		if c == name {
			return i
		}
	}
	return -1
}
